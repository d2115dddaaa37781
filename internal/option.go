package internal

// Option adjusts the application assembly before Run starts serving.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig runs the service with an explicit configuration instead of
// loading one from disk.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
