// Package validation checks student payloads before they reach a store.
//
// Value rules are go-playground/validator tags evaluated one field at a time,
// so a field that is absent can be skipped (partial update) or reported as
// missing (create, full replace) without reflection tricks on the payload.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-crud/internal/types"
)

const (
	// MinNameLen is the shortest accepted name after trimming whitespace.
	MinNameLen = 2
	// MinGPA and MaxGPA bound the gpa field, both inclusive.
	MinGPA = 0.0
	MaxGPA = 4.0
)

// local@domain.tld, no whitespace, no second @.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// trimmin=N: at least N characters once surrounding whitespace is removed.
	if err := v.RegisterValidation("trimmin", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	}); err != nil {
		panic(err)
	}

	if err := v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// field describes one payload field: its JSON name, its validator tag and
// how to read it. value returns ok=false when the field was not supplied.
type field struct {
	name  string
	tag   string
	value func(p types.StudentPayload) (any, bool)
}

var studentFields = []field{
	{
		name: "name",
		tag:  fmt.Sprintf("trimmin=%d", MinNameLen),
		value: func(p types.StudentPayload) (any, bool) {
			if p.Name == nil {
				return nil, false
			}
			return *p.Name, true
		},
	},
	{
		name: "email",
		tag:  "simpleemail",
		value: func(p types.StudentPayload) (any, bool) {
			if p.Email == nil {
				return nil, false
			}
			return *p.Email, true
		},
	},
	{
		name: "major",
		tag:  "trimmin=1",
		value: func(p types.StudentPayload) (any, bool) {
			if p.Major == nil {
				return nil, false
			}
			return *p.Major, true
		},
	},
	{
		name: "gpa",
		tag:  fmt.Sprintf("gte=%g,lte=%g", MinGPA, MaxGPA),
		value: func(p types.StudentPayload) (any, bool) {
			if p.GPA == nil {
				return nil, false
			}
			return *p.GPA, true
		},
	},
}

// Validate returns every problem found in p, in field order. An empty result
// means p is valid.
//
// With requireAll (create, full replace) a missing field is a problem. Without
// it (partial update) missing fields are skipped: they are not being changed.
func Validate(p types.StudentPayload, requireAll bool) []string {
	problems := make([]string, 0)

	for _, f := range studentFields {
		val, ok := f.value(p)
		if !ok {
			if requireAll {
				problems = append(problems, fmt.Sprintf("%s is required", f.name))
			}
			continue
		}

		if err := validate.Var(val, f.tag); err != nil {
			problems = append(problems, describe(f.name, err)...)
		}
	}

	return problems
}

// describe converts a validator error for one field into readable messages.
func describe(name string, err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("%s is invalid: %s", name, err)}
	}

	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.ActualTag() {
		case "trimmin":
			if e.Param() == "1" {
				out = append(out, fmt.Sprintf("%s must be a non-empty string", name))
			} else {
				out = append(out, fmt.Sprintf("%s must be a non-empty string of at least %s characters", name, e.Param()))
			}
		case "simpleemail":
			out = append(out, fmt.Sprintf("%s must be a valid email address", name))
		case "gte", "lte":
			out = append(out, fmt.Sprintf("%s must be a number between %.1f and %.1f", name, MinGPA, MaxGPA))
		default:
			out = append(out, fmt.Sprintf("%s is invalid", name))
		}
	}
	return out
}
