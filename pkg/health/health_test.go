package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"nightlife-navigator/pkg/logging"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestCheckAll_Aggregates(t *testing.T) {
	cases := []struct {
		name     string
		checkers []HealthChecker
		want     HealthStatus
	}{
		{"all healthy", []HealthChecker{
			NewDatabaseHealthChecker("database", fakePinger{}),
			StaticChecker("places", HealthStatusHealthy, "ok"),
		}, HealthStatusHealthy},
		{"disabled store degrades", []HealthChecker{
			NewDatabaseHealthChecker("database", nil),
			StaticChecker("places", HealthStatusHealthy, "ok"),
		}, HealthStatusDegraded},
		{"ping failure is unhealthy", []HealthChecker{
			NewDatabaseHealthChecker("database", fakePinger{err: errors.New("refused")}),
			StaticChecker("places", HealthStatusDegraded, "disabled"),
		}, HealthStatusUnhealthy},
		{"no checkers", nil, HealthStatusHealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hm := NewHealthManager(HealthConfig{Timeout: time.Second, Version: "test"}, logging.Discard())
			for _, c := range tc.checkers {
				hm.RegisterChecker(c)
			}
			got := hm.CheckAll(context.Background())
			if got.Status != tc.want {
				t.Fatalf("status=%s want %s (%+v)", got.Status, tc.want, got.Components)
			}
			if got.Summary.TotalComponents != len(tc.checkers) {
				t.Fatalf("summary total=%d want %d", got.Summary.TotalComponents, len(tc.checkers))
			}
		})
	}
}

func TestCheckAll_TimeoutReachesChecker(t *testing.T) {
	hm := NewHealthManager(HealthConfig{Timeout: 20 * time.Millisecond}, logging.Discard())
	hm.RegisterChecker(NewHealthCheckFunc("slow", func(ctx context.Context) ComponentHealth {
		<-ctx.Done()
		return ComponentHealth{Status: HealthStatusUnhealthy, Error: ctx.Err().Error()}
	}))
	got := hm.CheckAll(context.Background())
	c, ok := got.Components["slow"]
	if !ok || c.Status != HealthStatusUnhealthy || c.Name != "slow" {
		t.Fatalf("unexpected component: %+v", got.Components)
	}
	if c.LastChecked.IsZero() {
		t.Fatalf("last checked not set")
	}
}
