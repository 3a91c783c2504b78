package jobboard

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-board/internal/slug"
	"github.com/jonathan/job-board/internal/types"
)

var (
	websitePattern = regexp.MustCompile(`^https?://.+`)
	indexPattern   = regexp.MustCompile(`\[(\d+)\]`)
	indexSegment   = regexp.MustCompile(`\.\d+`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return websitePattern.MatchString(fl.Field().String())
	})
	return v
}

// jobMessages and companyMessages map "path tag" to the user-facing message.
// Array indexes are dropped from the path before lookup.
var jobMessages = map[string]string{
	"title required":       "Job title is required",
	"title max":            "Job title must be 200 characters or less",
	"location required":    "Location is required",
	"location max":         "Location must be 200 characters or less",
	"employmentType oneof": "Invalid employment type",
	"seniorityLevel oneof": "Invalid seniority level",
	"salary.min gte":       "Minimum salary must be 0 or greater",
	"salary.max gte":       "Maximum salary must be 0 or greater",
	"salary.max gtefield":  "Maximum salary must be greater than or equal to minimum salary",
	"salary.currency len":  "Currency must be 3 characters (e.g., USD, EUR)",
	"techStack required":   "String must contain at least 1 character(s)",
}

var companyMessages = map[string]string{
	"name required":   "Company name is required",
	"website httpurl": "Website must be a valid URL",
}

var accountMessages = map[string]string{
	"name required":           "Name is required",
	"name max":                "Name must be 100 characters or less",
	"email required":          "Email is required",
	"email email":             "Invalid email address",
	"password required":       "Password is required",
	"password min":            "Password must be at least 8 characters",
	"password max":            "Password must be 72 characters or less",
	"confirmPassword eqfield": "Passwords do not match",
}

// fieldPath turns a validator namespace such as "JobFormData.techStack[2]"
// into "techStack.2".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return indexPattern.ReplaceAllString(ns, ".$1")
}

func issuesFrom(err error, messages map[string]string) []FieldIssue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldIssue{{Message: err.Error()}}
	}
	issues := make([]FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		msg, ok := messages[indexSegment.ReplaceAllString(path, "")+" "+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		issues = append(issues, FieldIssue{Path: path, Message: msg})
	}
	return issues
}

// ValidateJob normalizes f in place and checks it against the job rules.
func ValidateJob(f *types.JobFormData) error {
	f.Normalize()
	return check(f, jobMessages)
}

// ValidateCompany normalizes f in place and checks it against the company rules.
func ValidateCompany(f *types.CompanyFormData) error {
	f.Normalize()
	var issues []FieldIssue
	if err := validate.Struct(f); err != nil {
		issues = issuesFrom(err, companyMessages)
	}
	if f.Slug != "" {
		if err := slug.ValidatePath(f.Slug); err != nil {
			issues = append(issues, FieldIssue{Path: "slug", Message: err.Error()})
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Prefix: "Validation failed", Issues: issues}
	}
	return nil
}

// ValidateSignUp normalizes r in place and checks it against the account rules.
func ValidateSignUp(r *types.SignUpRequest) error {
	r.Normalize()
	return check(r, accountMessages)
}

// ValidateSignIn normalizes r in place and checks that both credentials are present.
func ValidateSignIn(r *types.SignInRequest) error {
	r.Normalize()
	return check(r, accountMessages)
}

func check(v any, messages map[string]string) error {
	if err := validate.Struct(v); err != nil {
		return &ValidationError{Prefix: "Validation failed", Issues: issuesFrom(err, messages)}
	}
	return nil
}

// MergeIssues appends the issues of extra whose path is not already reported
// by base. Either may be nil.
func MergeIssues(base, extra *ValidationError) *ValidationError {
	if extra == nil {
		return base
	}
	if base == nil {
		return extra
	}
	seen := make(map[string]bool, len(base.Issues))
	for _, issue := range base.Issues {
		seen[issue.Path] = true
	}
	merged := &ValidationError{Prefix: base.Prefix, Issues: append([]FieldIssue(nil), base.Issues...)}
	for _, issue := range extra.Issues {
		if !seen[issue.Path] {
			merged.Issues = append(merged.Issues, issue)
		}
	}
	return merged
}

// ValidateSlug checks a slug received from a URL path.
func ValidateSlug(s string) error {
	if err := slug.ValidatePath(s); err != nil {
		return &ValidationError{Prefix: "Invalid slug", Issues: []FieldIssue{{Message: err.Error()}}}
	}
	return nil
}
