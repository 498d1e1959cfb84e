package mqtt

import "testing"

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"dt/cvra/tcu-001/cardata", "dt/cvra/tcu-001/cardata", true},
		{"dt/cvra/tcu-001/cardata", "dt/cvra/tcu-002/cardata", false},
		{"dt/cvra/+/cardata", "dt/cvra/tcu-001/cardata", true},
		{"dt/cvra/+/cardata", "dt/cvra/tcu-001/dtc", false},
		{"dt/cvra/tcu-001/#", "dt/cvra/tcu-001/job/abc/update", true},
		{"dt/cvra/tcu-001/#", "dt/cvra/tcu-002/job/abc/update", false},
		{"dt/cvra/+/job/+/update", "dt/cvra/tcu-001/job/j1/update", true},
		{"dt/cvra/+/job/+/update", "dt/cvra/tcu-001/job/j1/notify", false},
		{"#", "anything/at/all", true},
		{"dt/cvra/+", "dt/cvra/tcu-001/cardata", false},
	}

	for _, tt := range tests {
		if got := topicsMatch(tt.filter, tt.topic); got != tt.want {
			t.Errorf("topicsMatch(%q, %q) = %v, want %v", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func TestClientConfigValidate(t *testing.T) {
	cfg := &ClientConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty broker url")
	}

	cfg.BrokerURL = "tcp://localhost:1883"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	setDefaultConfig(cfg)
	if cfg.KeepAlive != 60 {
		t.Errorf("default keep-alive = %d, want 60", cfg.KeepAlive)
	}
}
