package patient

import "testing"

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TriageWeights = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing triage weights")
	}

	cfg = DefaultConfig()
	cfg.TriageWeights[2] = -0.1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}

	cfg = DefaultConfig()
	cfg.WaitRanges[1] = WaitRange{-1, 5}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative wait minimum")
	}
}

func TestPatient_Critical(t *testing.T) {
	cases := []struct {
		level int
		want  bool
	}{
		{1, true},
		{2, true},
		{3, false},
		{5, false},
	}
	for _, tc := range cases {
		p := &Patient{TriageLevel: tc.level}
		if p.Critical() != tc.want {
			t.Errorf("Critical() for triage %d = %v, want %v", tc.level, p.Critical(), tc.want)
		}
	}
}
