package health

import (
	"context"
)

// Pinger is satisfied by *database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseHealthChecker checks database connectivity. A nil Pinger means the
// store is disabled, which degrades the service without failing it.
type DatabaseHealthChecker struct {
	name string
	db   Pinger
}

func NewDatabaseHealthChecker(name string, db Pinger) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{name: name, db: db}
}

func (d *DatabaseHealthChecker) Name() string { return d.name }

func (d *DatabaseHealthChecker) Check(ctx context.Context) ComponentHealth {
	h := ComponentHealth{Name: d.name}
	if d.db == nil {
		h.Status = HealthStatusDegraded
		h.Message = "store disabled: DATABASE_URL not set"
		return h
	}
	if err := d.db.Ping(ctx); err != nil {
		h.Status = HealthStatusUnhealthy
		h.Message = "database ping failed"
		h.Error = err.Error()
		return h
	}
	h.Status = HealthStatusHealthy
	h.Message = "database reachable"
	return h
}

// StaticChecker reports a fixed status, e.g. for a component that is
// disabled by configuration.
func StaticChecker(name string, status HealthStatus, message string) HealthChecker {
	return NewHealthCheckFunc(name, func(context.Context) ComponentHealth {
		return ComponentHealth{Status: status, Message: message}
	})
}
