package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRunAggregatesWorstStatus(t *testing.T) {
	c := NewChecker()
	c.Register("ok", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusUp}
	})
	c.Register("degraded", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDegraded, Message: "slow"}
	})

	report := c.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("overall status = %s, want degraded", report.Status)
	}
	if len(report.Components) != 2 {
		t.Errorf("report has %d components, want 2", len(report.Components))
	}
}

func TestRunDownWins(t *testing.T) {
	c := NewChecker()
	c.Register("ok", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusUp}
	})
	c.Register("down", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDown, Message: "unreachable"}
	})

	if report := c.Run(context.Background()); report.Status != StatusDown {
		t.Errorf("overall status = %s, want down", report.Status)
	}
}

func TestReadyHandlerStatusCodes(t *testing.T) {
	c := NewChecker()
	c.Register("probe", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusUp}
	})
	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want 200", rec.Code)
	}

	c.Register("broken", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDown}
	})
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
}

func TestLiveHandlerAlwaysOK(t *testing.T) {
	c := NewChecker()
	rec := httptest.NewRecorder()
	c.LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", rec.Code)
	}
}
