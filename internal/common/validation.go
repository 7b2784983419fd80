package common

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// ValidationError is one field that failed a rule.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Message)
}

// ValidationRule checks one value and returns the failure message, or "" when
// the value passes.
type ValidationRule func(value string) string

// Validator collects every failure instead of stopping at the first one.
type Validator struct {
	errs []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field runs rules against value in order.
func (v *Validator) Field(name, value string, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			v.errs = append(v.errs, ValidationError{Field: name, Value: value, Message: msg})
		}
	}
	return v
}

// Check records msg against name unless ok holds. It covers conditions that
// are not a rule over a single string.
func (v *Validator) Check(ok bool, name, value, msg string) *Validator {
	if !ok {
		v.errs = append(v.errs, ValidationError{Field: name, Value: value, Message: msg})
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errs
}

// Err returns nil, or an AppError with the given code wrapping ErrInvalidInput
// and listing every failure.
func (v *Validator) Err(code string) error {
	if !v.HasErrors() {
		return nil
	}
	msgs := make([]string, len(v.errs))
	for i, e := range v.errs {
		msgs[i] = e.Error()
	}
	return NewAppError(code, strings.Join(msgs, "; "), ErrInvalidInput)
}

func Required(value string) string {
	if strings.TrimSpace(value) == "" {
		return "is required"
	}
	return ""
}

var digitsRegex = regexp.MustCompile(`^[0-9]+$`)

// Digits accepts only non-empty ASCII digit strings.
func Digits(value string) string {
	if !digitsRegex.MatchString(value) {
		return "must contain only digits"
	}
	return ""
}

// MaxLen limits value to max characters.
func MaxLen(max int) ValidationRule {
	return func(value string) string {
		if utf8.RuneCountInString(value) > max {
			return fmt.Sprintf("must be at most %d characters", max)
		}
		return ""
	}
}

// OneOf accepts exactly one of allowed.
func OneOf(allowed ...string) ValidationRule {
	return func(value string) string {
		if slices.Contains(allowed, value) {
			return ""
		}
		var shown []string
		for _, a := range allowed {
			if a == "" {
				a = `""`
			}
			shown = append(shown, a)
		}
		return "must be one of " + strings.Join(shown, ", ")
	}
}
