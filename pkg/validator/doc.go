// Package validator provides rule-based input validation.
//
// A Rule couples a check with the ValidationError reported when the check
// fails. Apply evaluates a list of rules and returns ValidationErrors when
// any fail, so callers can reject input before performing side effects:
//
//	err := validator.Apply(
//	    validator.Required("title", req.Title),
//	    validator.Clock("quiet_hours_start", start),
//	    validator.Timezone("timezone", tz),
//	)
//	if validator.IsValidationError(err) {
//	    // surface to the caller
//	}
//
// ValidationErrors can be wrapped with errors.Join alongside a package
// sentinel and still be recovered with ExtractValidationErrors.
package validator
