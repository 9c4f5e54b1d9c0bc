package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// LeadsChecker checks lead publisher availability.
type LeadsChecker interface {
	HealthCheck(ctx context.Context) error
}
