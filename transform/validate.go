package transform

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"yochan/failures"
)

// DefaultPurpose is used when the caller does not name a namespace.
const DefaultPurpose = "_misc"

var purposePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const msgInvalidPurpose = "Invalid `purpose` query parameter. At least 1 character, only alphanumeric, underscores and hyphen."

// param describes one recognised query parameter. The slice order below is
// the validation order.
type param struct {
	key      string
	min, max int
}

var params = []param{
	{key: "thumbnail", min: 1, max: 10000},
	{key: "asJpeg", min: 1, max: 100},
	{key: "asWebp", min: 1, max: 100},
}

// Validate turns raw query parameters into a Plan. Unrecognised keys are
// ignored. Validation stops at the first bad value.
func Validate(values url.Values) (Plan, error) {
	parsed := make(map[string]int, len(params))
	for _, p := range params {
		if !values.Has(p.key) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(values.Get(p.key)))
		if err != nil || n < p.min || n > p.max {
			return Plan{}, failures.Validationf(
				"Invalid `%s` query parameter. Expected an integer between %d and %d.", p.key, p.min, p.max)
		}
		parsed[p.key] = n
	}
	return NewPlan(parsed["thumbnail"], parsed["asJpeg"], parsed["asWebp"]), nil
}

// ValidatePurpose returns the namespace named by the `purpose` parameter,
// or DefaultPurpose when the parameter is absent.
func ValidatePurpose(values url.Values) (string, error) {
	if !values.Has("purpose") {
		return DefaultPurpose, nil
	}
	return CheckPurpose(values.Get("purpose"))
}

// CheckPurpose validates an explicit purpose.
func CheckPurpose(purpose string) (string, error) {
	if !IsValidPurpose(purpose) {
		return "", failures.Validation(msgInvalidPurpose)
	}
	return purpose, nil
}

// IsValidPurpose reports whether s is a usable namespace name.
func IsValidPurpose(s string) bool {
	return purposePattern.MatchString(s)
}
