package profile

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/seenimoa/mortgagecli/pkg/models"
)

var profileNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their file/wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	// Names become file names, so keep them to a safe alphabet.
	_ = v.RegisterValidation("profilename", func(fl validator.FieldLevel) bool {
		return ValidName(fl.Field().String())
	})
	return v
}

// ValidName reports whether name can be used as a profile name.
func ValidName(name string) bool {
	return len(name) <= 64 && profileNameRe.MatchString(name)
}

// FieldError is one failed constraint.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s must satisfy %s=%s", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s must satisfy %s", f.Field, f.Rule)
}

// ValidationError lists every offending field of a profile or property input.
type ValidationError struct {
	Subject string       `json:"subject"`
	Fields  []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}

// Validate checks a profile against its range constraints.
// Threshold ordering is not checked.
func Validate(p *models.Profile) error {
	return check("profile", p)
}

// ValidateProperty checks an analysis request.
func ValidateProperty(in models.PropertyInput) error {
	return check("property", in)
}

// ValidateStruct checks any struct carrying validate tags, such as an API request.
func ValidateStruct(subject string, v any) error {
	return check(subject, v)
}

func check(subject string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating %s: %w", subject, err)
	}

	out := &ValidationError{Subject: subject}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: trimRoot(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// trimRoot drops the struct type prefix, "Profile.mortgage.interest_rate" → "mortgage.interest_rate".
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
