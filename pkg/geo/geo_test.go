package geo

import "testing"

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		p    Point
		ok   bool
	}{
		{"valid", Point{14.65, 121.10}, true},
		{"lat too high", Point{90.1, 0}, false},
		{"lat too low", Point{-90.1, 0}, false},
		{"lon too high", Point{0, 180.1}, false},
		{"lon too low", Point{0, -180.1}, false},
		{"boundary lat", Point{90, 179}, true},
		{"boundary lon", Point{0, -180}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.p)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected invalid coordinate error")
			}
		})
	}
}

func TestHaversineZeroForSamePoint(t *testing.T) {
	p := Point{14.6507, 121.1029}
	if d := HaversineMeters(p, p); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Two points roughly 1 degree of latitude apart (~111km).
	a := Point{0, 0}
	b := Point{1, 0}
	d := HaversineMeters(a, b)
	if d < 110000 || d > 112000 {
		t.Fatalf("expected ~111km, got %f", d)
	}
}
