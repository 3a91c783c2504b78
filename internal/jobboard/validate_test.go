package jobboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-board/internal/types"
)

func TestValidateJob(t *testing.T) {
	base := func() types.JobFormData { return validJob("Backend Engineer") }

	tests := []struct {
		name    string
		mutate  func(*types.JobFormData)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*types.JobFormData) {},
		},
		{
			name:   "valid with salary",
			mutate: func(f *types.JobFormData) { f.Salary = &types.SalaryInput{Min: 0, Max: 0, Currency: "usd"} },
		},
		{
			name:    "blank title after trim",
			mutate:  func(f *types.JobFormData) { f.Title = "   " },
			wantErr: "Validation failed: title: Job title is required",
		},
		{
			name:    "title too long",
			mutate:  func(f *types.JobFormData) { f.Title = strings.Repeat("a", 201) },
			wantErr: "Validation failed: title: Job title must be 200 characters or less",
		},
		{
			name:   "title of 200 multibyte characters",
			mutate: func(f *types.JobFormData) { f.Title = strings.Repeat("é", 200) },
		},
		{
			name:    "missing location",
			mutate:  func(f *types.JobFormData) { f.Location = "" },
			wantErr: "Validation failed: location: Location is required",
		},
		{
			name:    "bad seniority",
			mutate:  func(f *types.JobFormData) { f.SeniorityLevel = "Lead" },
			wantErr: "Validation failed: seniorityLevel: Invalid seniority level",
		},
		{
			name:    "negative minimum",
			mutate:  func(f *types.JobFormData) { f.Salary = &types.SalaryInput{Min: -1, Max: 10, Currency: "USD"} },
			wantErr: "Validation failed: salary.min: Minimum salary must be 0 or greater",
		},
		{
			name:    "max below min",
			mutate:  func(f *types.JobFormData) { f.Salary = &types.SalaryInput{Min: 10, Max: 5, Currency: "USD"} },
			wantErr: "Validation failed: salary.max: Maximum salary must be greater than or equal to minimum salary",
		},
		{
			name:    "currency length",
			mutate:  func(f *types.JobFormData) { f.Salary = &types.SalaryInput{Min: 1, Max: 5, Currency: "DOLLARS"} },
			wantErr: "Validation failed: salary.currency: Currency must be 3 characters (e.g., USD, EUR)",
		},
		{
			name:    "blank tech stack entry",
			mutate:  func(f *types.JobFormData) { f.TechStack = []string{"Go", "  "} },
			wantErr: "Validation failed: techStack.1: String must contain at least 1 character(s)",
		},
		{
			name: "every violation reported",
			mutate: func(f *types.JobFormData) {
				*f = types.JobFormData{}
			},
			wantErr: "Validation failed: title: Job title is required, location: Location is required, " +
				"employmentType: Invalid employment type, seniorityLevel: Invalid seniority level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base()
			tt.mutate(&f)
			err := ValidateJob(&f)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidateJob_UppercasesCurrency(t *testing.T) {
	f := validJob("Dev")
	f.Salary = &types.SalaryInput{Min: 1, Max: 2, Currency: "gbp"}
	require.NoError(t, ValidateJob(&f))
	assert.Equal(t, "GBP", f.Salary.Currency)
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug    string
		wantErr string
	}{
		{"backend-engineer-2", ""},
		{"", "Invalid slug: Slug is required"},
		{strings.Repeat("a", 201), "Invalid slug: Slug must be 200 characters or less"},
		{"has space", "Invalid slug: Slug can only contain lowercase letters, numbers, and hyphens"},
	}
	for _, tt := range tests {
		err := ValidateSlug(tt.slug)
		if tt.wantErr == "" {
			assert.NoError(t, err, tt.slug)
			continue
		}
		assert.EqualError(t, err, tt.wantErr)
	}
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "techStack.2", fieldPath("JobFormData.techStack[2]"))
	assert.Equal(t, "salary.max", fieldPath("JobFormData.salary.max"))
	assert.Equal(t, "name", fieldPath("CompanyFormData.name"))
}

func TestValidateSignUp(t *testing.T) {
	base := func() types.SignUpRequest {
		return types.SignUpRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"}
	}

	tests := []struct {
		name    string
		mutate  func(*types.SignUpRequest)
		wantErr string
	}{
		{
			name:   "valid without confirmation",
			mutate: func(*types.SignUpRequest) {},
		},
		{
			name:   "valid with matching confirmation",
			mutate: func(r *types.SignUpRequest) { r.ConfirmPassword = "password123" },
		},
		{
			name:    "blank name",
			mutate:  func(r *types.SignUpRequest) { r.Name = "  " },
			wantErr: "Validation failed: name: Name is required",
		},
		{
			name:    "name too long",
			mutate:  func(r *types.SignUpRequest) { r.Name = strings.Repeat("n", 101) },
			wantErr: "Validation failed: name: Name must be 100 characters or less",
		},
		{
			name:    "bad email",
			mutate:  func(r *types.SignUpRequest) { r.Email = "not-an-email" },
			wantErr: "Validation failed: email: Invalid email address",
		},
		{
			name:    "short password",
			mutate:  func(r *types.SignUpRequest) { r.Password = "short" },
			wantErr: "Validation failed: password: Password must be at least 8 characters",
		},
		{
			name: "password past the bcrypt limit",
			mutate: func(r *types.SignUpRequest) {
				r.Password = strings.Repeat("p", 73)
			},
			wantErr: "Validation failed: password: Password must be 72 characters or less",
		},
		{
			name:    "mismatched confirmation",
			mutate:  func(r *types.SignUpRequest) { r.ConfirmPassword = "password124" },
			wantErr: "Validation failed: confirmPassword: Passwords do not match",
		},
		{
			name:    "everything missing",
			mutate:  func(r *types.SignUpRequest) { *r = types.SignUpRequest{} },
			wantErr: "Validation failed: name: Name is required, email: Email is required, password: Password is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)

			err := ValidateSignUp(&req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidateSignIn(t *testing.T) {
	req := types.SignInRequest{Email: " ADA@example.com ", Password: "x"}
	require.NoError(t, ValidateSignIn(&req))
	assert.Equal(t, "ada@example.com", req.Email)

	err := ValidateSignIn(&types.SignInRequest{Email: "ada@example.com"})
	require.Error(t, err)
	assert.Equal(t, "Validation failed: password: Password is required", err.Error())
}

func TestMergeIssues(t *testing.T) {
	structural := &ValidationError{Prefix: "Validation failed", Issues: []FieldIssue{
		{Path: "techStack.0", Message: "Invalid type. Expected: string, given: integer"},
	}}
	rules := &ValidationError{Prefix: "Validation failed", Issues: []FieldIssue{
		{Path: "title", Message: "Job title is required"},
		{Path: "techStack.0", Message: "String must contain at least 1 character(s)"},
	}}

	merged := MergeIssues(structural, rules)

	assert.Equal(t, []FieldIssue{
		{Path: "techStack.0", Message: "Invalid type. Expected: string, given: integer"},
		{Path: "title", Message: "Job title is required"},
	}, merged.Issues)
	assert.Len(t, structural.Issues, 1, "inputs are not modified")

	assert.Same(t, structural, MergeIssues(structural, nil))
	assert.Same(t, rules, MergeIssues(nil, rules))
}
