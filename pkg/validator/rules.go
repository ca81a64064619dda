package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // Timezone must not depend on the host zoneinfo
)

// Required fails for strings that are empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
		},
	}
}

func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return len(value) >= min },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at least %d characters long", min),
			TranslationKey: "validation.min_length",
			Params:         map[string]any{"min": min},
		},
	}
}

func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey: "validation.max_length",
			Params:         map[string]any{"max": max},
		},
	}
}

func InList[T comparable](field string, value T, allowed []T) Rule {
	return Rule{
		Check: func() bool {
			for _, a := range allowed {
				if value == a {
					return true
				}
			}
			return false
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be one of: %v", allowed),
			TranslationKey: "validation.in_list",
			Params:         map[string]any{"allowed": allowed},
		},
	}
}

// EachInList fails if any element of values is not in allowed.
func EachInList[T comparable](field string, values []T, allowed []T) Rule {
	return Rule{
		Check: func() bool {
			for _, v := range values {
				found := false
				for _, a := range allowed {
					if v == a {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("every value must be one of: %v", allowed),
			TranslationKey: "validation.each_in_list",
			Params:         map[string]any{"allowed": allowed},
		},
	}
}

// NotBefore fails when value is earlier than min.
func NotBefore(field string, value, min time.Time) Rule {
	return Rule{
		Check: func() bool { return !value.Before(min) },
		Error: ValidationError{
			Field:          field,
			Message:        "must not be in the past",
			TranslationKey: "validation.not_before",
		},
	}
}

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Clock fails unless value is a 24-hour "HH:MM" time of day.
func Clock(field, value string) Rule {
	return Rule{
		Check: func() bool { return clockRegex.MatchString(value) },
		Error: ValidationError{
			Field:          field,
			Message:        "must be a time of day in HH:MM format",
			TranslationKey: "validation.clock",
		},
	}
}

// Timezone fails unless value names a loadable IANA location.
func Timezone(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return false
			}
			_, err := time.LoadLocation(value)
			return err == nil
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must be a valid IANA timezone",
			TranslationKey: "validation.timezone",
		},
	}
}
