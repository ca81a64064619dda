package scheduler

import "time"

// Config tunes both scheduler loops.
// A zero or negative day threshold disables that hygiene step.
type Config struct {
	DispatchInterval  time.Duration `env:"SCHEDULER_DISPATCH_INTERVAL" envDefault:"30s"`
	DispatchBatchSize int           `env:"SCHEDULER_DISPATCH_BATCH_SIZE" envDefault:"100"`
	HygieneInterval   time.Duration `env:"SCHEDULER_HYGIENE_INTERVAL" envDefault:"24h"`
	RetentionDays     int           `env:"SCHEDULER_RETENTION_DAYS" envDefault:"90"`
	StaleTokenDays    int           `env:"SCHEDULER_STALE_TOKEN_DAYS" envDefault:"60"`
	PruneTokenDays    int           `env:"SCHEDULER_PRUNE_TOKEN_DAYS" envDefault:"30"`
	LockKey           string        `env:"SCHEDULER_LOCK_KEY" envDefault:"notifykit:scheduler:dispatch"`
	LockTTL           time.Duration `env:"SCHEDULER_LOCK_TTL" envDefault:"5m"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		DispatchInterval:  30 * time.Second,
		DispatchBatchSize: 100,
		HygieneInterval:   24 * time.Hour,
		RetentionDays:     90,
		StaleTokenDays:    60,
		PruneTokenDays:    30,
		LockKey:           "notifykit:scheduler:dispatch",
		LockTTL:           5 * time.Minute,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.DispatchInterval <= 0 {
		c.DispatchInterval = d.DispatchInterval
	}
	if c.DispatchBatchSize <= 0 {
		c.DispatchBatchSize = d.DispatchBatchSize
	}
	if c.HygieneInterval <= 0 {
		c.HygieneInterval = d.HygieneInterval
	}
	if c.LockKey == "" {
		c.LockKey = d.LockKey
	}
	if c.LockTTL <= 0 {
		c.LockTTL = d.LockTTL
	}
	return c
}
