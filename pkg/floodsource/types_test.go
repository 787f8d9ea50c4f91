package floodsource

import "testing"

func TestStationReadingClassify(t *testing.T) {
	th := StationThresholds{Alert: 15.0, Alarm: 16.5, Critical: 18.0}

	cases := []struct {
		level      float64
		wantStatus StationStatus
		wantRisk   float64
	}{
		{14.0, StationNormal, 0.2},
		{15.0, StationAlert, 0.5},
		{16.5, StationAlarm, 0.8},
		{18.0, StationCritical, 1.0},
		{18.5, StationCritical, 1.0},
	}
	for _, c := range cases {
		r := StationReading{WaterLevel: c.level, Thresholds: th}.Classify()
		if r.Status != c.wantStatus || r.Risk != c.wantRisk {
			t.Errorf("level %.1f: got (%s, %.1f), want (%s, %.1f)", c.level, r.Status, r.Risk, c.wantStatus, c.wantRisk)
		}
	}
}

func TestStationReadingClassifyExcludesUnconfiguredThresholds(t *testing.T) {
	r := StationReading{WaterLevel: 25.0}.Classify()
	if r.Status != StationExcluded || r.Risk != 0 {
		t.Errorf("unconfigured thresholds: got (%s, %.1f), want (%s, 0.0)", r.Status, r.Risk, StationExcluded)
	}
}

func TestReservoirReadingClassify(t *testing.T) {
	cases := []struct {
		deviation  float64
		wantRisk   float64
	}{
		{2.5, 1.0},
		{1.2, 0.8},
		{0.6, 0.5},
		{0.1, 0.3},
		{-0.5, 0.1},
	}
	for _, c := range cases {
		r := ReservoirReading{Level: 10 + c.deviation, NormalHigh: 10}.Classify()
		if r.Risk != c.wantRisk {
			t.Errorf("deviation %.1f: got risk %.1f, want %.1f", c.deviation, r.Risk, c.wantRisk)
		}
	}
}

func TestClassifyRainfall(t *testing.T) {
	cases := []struct {
		mmh  float64
		want RainIntensity
	}{
		{0, RainNone},
		{2.0, RainLight},
		{7.5, RainModerate},
		{15, RainHeavy},
		{30, RainIntense},
		{31, RainTorrential},
	}
	for _, c := range cases {
		got := ClassifyRainfall(c.mmh)
		if got != c.want {
			t.Errorf("mm/h %.1f: got %s, want %s", c.mmh, got, c.want)
		}
	}
}
