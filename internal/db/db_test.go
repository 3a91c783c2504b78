package db

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		wantMsg string
	}{
		{
			name: "job slug unique violation",
			err:  &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintJobSlug},
			want: ErrDuplicateSlug,
		},
		{
			name: "company slug unique violation",
			err:  &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintCompanySlug},
			want: ErrDuplicateSlug,
		},
		{
			name: "email unique violation wrapped",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintUserEmail}),
			want: ErrDuplicateEmail,
		},
		{
			name:    "website check violation",
			err:     &pgconn.PgError{Code: codeCheckViolation, ConstraintName: constraintWebsite},
			wantMsg: "Website must be a valid URL",
		},
		{
			name:    "salary range check violation",
			err:     &pgconn.PgError{Code: codeCheckViolation, ConstraintName: constraintSalaryRange},
			wantMsg: "Maximum salary must be greater than or equal to minimum salary",
		},
		{
			name:    "unknown check falls back to driver message",
			err:     &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "other_check", Message: "row failed"},
			wantMsg: "row failed",
		},
		{
			name: "unknown unique constraint",
			err:  &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "companies_user_id_key"},
		},
		{
			name: "not a postgres error",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			switch {
			case tt.wantMsg != "":
				var ce *ConstraintError
				if !errors.As(got, &ce) {
					t.Fatalf("translate() = %v, want *ConstraintError", got)
				}
				if ce.Message != tt.wantMsg {
					t.Errorf("Message = %q, want %q", ce.Message, tt.wantMsg)
				}
			case tt.want != nil:
				if !errors.Is(got, tt.want) {
					t.Errorf("translate() = %v, want %v", got, tt.want)
				}
			default:
				if got != nil {
					t.Errorf("translate() = %v, want nil", got)
				}
			}
		})
	}
}

func TestMigrations(t *testing.T) {
	migrations, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations() error = %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if migrations[0].Version != "001_init" {
		t.Errorf("first version = %q, want 001_init", migrations[0].Version)
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i-1].Version >= migrations[i].Version {
			t.Errorf("migrations out of order: %s before %s", migrations[i-1].Version, migrations[i].Version)
		}
	}
	for _, table := range []string{"users", "companies", "jobs"} {
		if !strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("001_init does not create table %s", table)
		}
	}
}

func TestEncodeFields(t *testing.T) {
	t.Run("nil salary stays null", func(t *testing.T) {
		salary, stack, err := encodeFields(JobFields{Title: "Dev"})
		if err != nil {
			t.Fatalf("encodeFields() error = %v", err)
		}
		if salary != nil {
			t.Errorf("salary = %s, want nil", salary)
		}
		if string(stack) != "[]" {
			t.Errorf("stack = %s, want []", stack)
		}
	})

	t.Run("salary and stack encoded", func(t *testing.T) {
		salary, stack, err := encodeFields(JobFields{
			Salary:    &Salary{Min: 100, Max: 200, Currency: "USD"},
			TechStack: []string{"Go", "Postgres"},
		})
		if err != nil {
			t.Fatalf("encodeFields() error = %v", err)
		}
		if string(salary) != `{"min":100,"max":200,"currency":"USD"}` {
			t.Errorf("salary = %s", salary)
		}
		if string(stack) != `["Go","Postgres"]` {
			t.Errorf("stack = %s", stack)
		}
	})
}
