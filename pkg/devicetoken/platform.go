package devicetoken

import "fmt"

// Platform is the device family a token belongs to.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// AllPlatforms returns every supported platform.
func AllPlatforms() []Platform {
	return []Platform{PlatformIOS, PlatformAndroid, PlatformWeb}
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	default:
		return false
	}
}

func (p Platform) String() string { return string(p) }

// ParsePlatform converts s to a Platform, rejecting unknown names.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
	return p, nil
}
