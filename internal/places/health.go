package places

import (
	"context"

	"nightlife-navigator/pkg/circuit"
	"nightlife-navigator/pkg/health"
)

// Checker reports the lookup client as a health component. A disabled client
// or an open breaker degrades the service; neither fails it.
func (c *Client) Checker() health.HealthChecker {
	return health.NewHealthCheckFunc("places", func(ctx context.Context) health.ComponentHealth {
		if !c.Enabled() {
			return health.ComponentHealth{Status: health.HealthStatusDegraded, Message: "places lookup disabled: GOOGLE_MAPS_API_KEY not set"}
		}
		st := c.BreakerState()
		h := health.ComponentHealth{Metadata: map[string]interface{}{"circuit": st.String()}}
		switch st {
		case circuit.Closed:
			h.Status = health.HealthStatusHealthy
			h.Message = "places lookup available"
		default:
			h.Status = health.HealthStatusDegraded
			h.Message = "places lookup failing, circuit " + st.String()
		}
		return h
	})
}
