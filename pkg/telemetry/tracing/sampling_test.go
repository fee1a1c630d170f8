package tracing

import (
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		wantErr  bool
		wantDesc string
	}{
		{"always", 1.0, false, "AlwaysOnSampler"},
		{"never", 0.0, false, "AlwaysOffSampler"},
		{"ratio", 0.25, false, "TraceIDRatioBased{0.25}"},
		{"negative", -0.1, true, ""},
		{"above one", 1.1, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := NewSampler(tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSampler(%v) error = %v, wantErr %v", tt.ratio, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			want := "ParentBased{root:" + tt.wantDesc
			if got := sampler.Description(); len(got) < len(want) || got[:len(want)] != want {
				t.Errorf("Description() = %q, want prefix %q", got, want)
			}
		})
	}
}

func TestNewSampler_RootDecision(t *testing.T) {
	sampler, err := NewSampler(0.0)
	if err != nil {
		t.Fatalf("NewSampler() error = %v", err)
	}

	result := sampler.ShouldSample(sdktrace.SamplingParameters{
		TraceID: trace.TraceID{1},
		Name:    "root",
	})
	if result.Decision != sdktrace.Drop {
		t.Errorf("Decision = %v, want Drop", result.Decision)
	}
}
