package health

import (
	"context"
	"runtime"
	"testing"
)

func TestNewMemoryChecker_Defaults(t *testing.T) {
	tests := []struct {
		name         string
		config       MemoryCheckerConfig
		wantWarning  float64
		wantCritical float64
	}{
		{"zero", MemoryCheckerConfig{}, 0.8, 0.95},
		{"out of range", MemoryCheckerConfig{WarningThreshold: 2, CriticalThreshold: -1}, 0.8, 0.95},
		{"critical below warning", MemoryCheckerConfig{WarningThreshold: 0.9, CriticalThreshold: 0.5}, 0.9, 0.99},
		{"valid", MemoryCheckerConfig{WarningThreshold: 0.6, CriticalThreshold: 0.7}, 0.6, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemoryChecker(tt.config)
			if m.config.WarningThreshold != tt.wantWarning {
				t.Errorf("WarningThreshold = %v, want %v", m.config.WarningThreshold, tt.wantWarning)
			}
			if m.config.CriticalThreshold != tt.wantCritical {
				t.Errorf("CriticalThreshold = %v, want %v", m.config.CriticalThreshold, tt.wantCritical)
			}
		})
	}
}

func TestMemoryChecker_Thresholds(t *testing.T) {
	tests := []struct {
		name string
		heap uint64
		want Status
	}{
		{"normal", 500, StatusHealthy},
		{"high", 850, StatusDegraded},
		{"critical", 990, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemoryChecker(MemoryCheckerConfig{Limit: 1000})
			m.read = func(s *runtime.MemStats) { s.HeapAlloc = tt.heap }

			r := m.Check(context.Background())
			if r.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", r.Status, tt.want, r.Message)
			}
			if r.Details["limit_bytes"] != uint64(1000) {
				t.Errorf("limit_bytes = %v", r.Details["limit_bytes"])
			}
		})
	}
}

func TestMemoryChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := NewMemoryChecker(MemoryCheckerConfig{}).Check(ctx); r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", r.Status)
	}
}

func TestMemoryChecker_Live(t *testing.T) {
	m := NewMemoryChecker(MemoryCheckerConfig{})
	if m.Name() != "memory" {
		t.Errorf("Name() = %q", m.Name())
	}
	r := m.Check(context.Background())
	if r.Details == nil && r.Message != "memory stats unavailable" {
		t.Errorf("unexpected result: %+v", r)
	}
}
