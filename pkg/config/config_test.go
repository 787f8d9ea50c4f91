package config

import "testing"

func TestDefaultIsMissingGraphPath(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing Graph.Path in the bare default")
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := Default()
	cfg.Graph.Path = "testdata/marikina.yaml"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRequiresS3BucketWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.Graph.Path = "testdata/marikina.yaml"
	cfg.Snapshot.UseS3 = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for UseS3 without a bucket")
	}

	cfg.Snapshot.S3Bucket = "floodroute-snapshots"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config with bucket set, got %v", err)
	}
}

func TestValidateRejectsBadFusionWeights(t *testing.T) {
	cfg := Default()
	cfg.Graph.Path = "testdata/marikina.yaml"
	cfg.Fusion.WeightDepth = 0.9
	cfg.Fusion.WeightCrowd = 0.9
	cfg.Fusion.WeightOfficial = 0.9

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for fusion weights not summing to 1.0")
	}
}
