package devicetoken

// Config holds token validation thresholds and hygiene windows.
type Config struct {
	MinLengthIOS     int `env:"DEVICE_TOKEN_MIN_LEN_IOS" envDefault:"64"`
	MinLengthAndroid int `env:"DEVICE_TOKEN_MIN_LEN_ANDROID" envDefault:"100"`
	MinLengthWeb     int `env:"DEVICE_TOKEN_MIN_LEN_WEB" envDefault:"64"`
}

// DefaultConfig returns the thresholds used when no Config is supplied.
func DefaultConfig() Config {
	return Config{
		MinLengthIOS:     64,
		MinLengthAndroid: 100,
		MinLengthWeb:     64,
	}
}

// MinLength returns the shortest token accepted for p.
func (c Config) MinLength(p Platform) int {
	switch p {
	case PlatformIOS:
		return c.MinLengthIOS
	case PlatformAndroid:
		return c.MinLengthAndroid
	case PlatformWeb:
		return c.MinLengthWeb
	default:
		return 0
	}
}
