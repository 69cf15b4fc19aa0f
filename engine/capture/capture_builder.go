package capture

import (
	"log/slog"
	"time"
)

// ProviderBuilderOption is a functional option used to configure a Provider during construction.
type ProviderBuilderOption func(*provider)

// WithLogger sets the structured logger for capture events. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ProviderBuilderOption: a function that sets the logger for this provider
func WithLogger(logger *slog.Logger) ProviderBuilderOption {
	return func(p *provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStrategy overrides the strategy selected from the output's adapter
// topology. Mostly useful for forcing the staged path on systems where the
// shared-adapter report is unreliable.
//
// Parameters:
//   - s: the Strategy to force
//
// Returns:
//   - ProviderBuilderOption: a function that forces the strategy for this provider
func WithStrategy(s Strategy) ProviderBuilderOption {
	return func(p *provider) {
		p.forcedStrategy = &s
	}
}

// WithContinuousTimeout sets how long AcquireContinuous waits for a new frame.
// Defaults to roughly one 60 Hz refresh interval.
//
// Parameters:
//   - d: the maximum wait per CaptureFrame call
//
// Returns:
//   - ProviderBuilderOption: a function that sets the continuous acquire timeout
func WithContinuousTimeout(d time.Duration) ProviderBuilderOption {
	return func(p *provider) {
		if d > 0 {
			p.continuousTimeout = d
		}
	}
}
