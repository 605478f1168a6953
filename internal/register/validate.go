package register

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// OtherTitle is the title choice that defers to the free-text custom title.
const OtherTitle = "Other"

// Submission is the raw field set posted by the registration form.
type Submission struct {
	Title              string `form:"title" validate:"required"`
	CustomTitle        string `form:"custom_title"`
	FirstName          string `form:"first_name" validate:"required"`
	Surname            string `form:"surname" validate:"required"`
	OtherNames         string `form:"other_names"`
	Identifier         string `form:"id_number" validate:"required"`
	Designation        string `form:"designation" validate:"required"`
	Organization       string `form:"organization" validate:"required"`
	Gender             string `form:"gender" validate:"required"`
	DisabilityStatus   string `form:"pwd" validate:"required"`
	DisabilityCategory string `form:"disability_category"`
	Date               string `form:"date" validate:"required"`
	Time               string `form:"time" validate:"required"`
	Signature          string `form:"signature" validate:"required"`
	Declaration        string `form:"declaration" validate:"required"`
}

// Rules are optional per-deployment format checks. Zero values disable them.
type Rules struct {
	IdentifierPattern *regexp.Regexp
	DateLayout        string
	TimeLayout        string
}

// Validator normalizes submissions into records.
type Validator struct {
	v     *validator.Validate
	rules Rules
}

// NewValidator builds a validator that names fields by their form key.
func NewValidator(rules Rules) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v, rules: rules}
}

// Validate checks required and format rules and resolves the effective title.
// Whitespace-only values count as missing, but values are stored exactly as
// submitted. The signature is carried through untouched in
// SignatureReference; the caller replaces it after processing.
func (v *Validator) Validate(sub Submission) (Record, error) {
	if err := v.v.Struct(trimmed(sub)); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Record{}, &ValidationError{Field: verrs[0].Field()}
		}
		return Record{}, err
	}

	if p := v.rules.IdentifierPattern; p != nil && !p.MatchString(sub.Identifier) {
		return Record{}, &ValidationError{Field: "id_number", Reason: "does not match " + p.String()}
	}
	if l := v.rules.DateLayout; l != "" {
		if _, err := time.Parse(l, sub.Date); err != nil {
			return Record{}, &ValidationError{Field: "date", Reason: "expected layout " + l}
		}
	}
	if l := v.rules.TimeLayout; l != "" {
		if _, err := time.Parse(l, sub.Time); err != nil {
			return Record{}, &ValidationError{Field: "time", Reason: "expected layout " + l}
		}
	}

	title := sub.Title
	if strings.TrimSpace(title) == OtherTitle {
		title = sub.CustomTitle
	}

	return Record{
		Title:              title,
		FirstName:          sub.FirstName,
		Surname:            sub.Surname,
		OtherNames:         sub.OtherNames,
		Identifier:         sub.Identifier,
		Designation:        sub.Designation,
		Organization:       sub.Organization,
		Gender:             sub.Gender,
		DisabilityStatus:   sub.DisabilityStatus,
		DisabilityCategory: sub.DisabilityCategory,
		Date:               sub.Date,
		Time:               sub.Time,
		SignatureReference: sub.Signature,
	}, nil
}

func trimmed(s Submission) Submission {
	fields := []*string{
		&s.Title, &s.CustomTitle, &s.FirstName, &s.Surname, &s.OtherNames,
		&s.Identifier, &s.Designation, &s.Organization, &s.Gender,
		&s.DisabilityStatus, &s.DisabilityCategory, &s.Date, &s.Time,
		&s.Signature, &s.Declaration,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
	return s
}
