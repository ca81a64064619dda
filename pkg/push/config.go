package push

import "time"

// Config tunes the Sender's token hygiene.
type Config struct {
	CleanupBatchSize   int           `env:"PUSH_CLEANUP_BATCH_SIZE" envDefault:"100"`
	CleanupPause       time.Duration `env:"PUSH_CLEANUP_PAUSE" envDefault:"1s"`
	CleanupConcurrency int           `env:"PUSH_CLEANUP_CONCURRENCY" envDefault:"5"`
	ValidateAttempts   int           `env:"PUSH_VALIDATE_ATTEMPTS" envDefault:"3"`
	RetryInitial       time.Duration `env:"PUSH_RETRY_INITIAL" envDefault:"500ms"`
	RetryMax           time.Duration `env:"PUSH_RETRY_MAX" envDefault:"10s"`
}

// DefaultConfig returns the values Config takes from its envDefault tags.
func DefaultConfig() Config {
	return Config{
		CleanupBatchSize:   100,
		CleanupPause:       time.Second,
		CleanupConcurrency: 5,
		ValidateAttempts:   3,
		RetryInitial:       500 * time.Millisecond,
		RetryMax:           10 * time.Second,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.CleanupBatchSize <= 0 {
		c.CleanupBatchSize = d.CleanupBatchSize
	}
	if c.CleanupConcurrency <= 0 {
		c.CleanupConcurrency = d.CleanupConcurrency
	}
	if c.ValidateAttempts <= 0 {
		c.ValidateAttempts = d.ValidateAttempts
	}
	if c.CleanupPause < 0 {
		c.CleanupPause = 0
	}
	return c
}

func (c Config) backoff() Backoff {
	return Backoff{
		InitialInterval: c.RetryInitial,
		MaxInterval:     c.RetryMax,
		JitterFactor:    0.2,
	}
}
