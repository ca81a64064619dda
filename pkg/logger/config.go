package logger

// Config holds logger settings loaded from the environment.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	Service     string `env:"SERVICE_NAME" envDefault:"notifyd"`
	Level       string `env:"LOG_LEVEL"`
	Format      string `env:"LOG_FORMAT"`
}
