package health

import "context"

// StorePinger checks blob store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// GeneratorChecker reports whether the generation provider has credentials.
type GeneratorChecker interface {
	IsConfigured() bool
}
