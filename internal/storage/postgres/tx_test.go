package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassification(t *testing.T) {
	t.Parallel()

	wrap := func(code string) error {
		return fmt.Errorf("insert: %w", &pgconn.PgError{Code: code})
	}

	tests := []struct {
		name      string
		err       error
		unique    bool
		badUUID   bool
		check     bool
		retryable bool
	}{
		{name: "unique", err: wrap(codeUniqueViolation), unique: true},
		{name: "invalid uuid", err: wrap(codeInvalidTextRep), badUUID: true},
		{name: "check", err: wrap(codeCheckViolation), check: true},
		{name: "serialization", err: wrap(codeSerializationFailure), retryable: true},
		{name: "deadlock", err: wrap(codeDeadlockDetected), retryable: true},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isUniqueViolation(tt.err); got != tt.unique {
				t.Fatalf("isUniqueViolation = %v", got)
			}
			if got := isInvalidUUID(tt.err); got != tt.badUUID {
				t.Fatalf("isInvalidUUID = %v", got)
			}
			if got := isCheckViolation(tt.err); got != tt.check {
				t.Fatalf("isCheckViolation = %v", got)
			}
			if got := isRetryable(tt.err); got != tt.retryable {
				t.Fatalf("isRetryable = %v", got)
			}
		})
	}
}
