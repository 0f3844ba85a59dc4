package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsOverlapViolation(t *testing.T) {
	exclusion := &pgconn.PgError{Code: "23P01", ConstraintName: "reservations_no_overlap"}
	if !isOverlapViolation(exclusion) {
		t.Error("SQLSTATE 23P01 should be detected as an overlap violation")
	}
	if !isOverlapViolation(fmt.Errorf("create failed: %w", exclusion)) {
		t.Error("wrapped exclusion errors should be detected")
	}
	if isOverlapViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("a unique violation is not an overlap violation")
	}
	if isOverlapViolation(errors.New("connection refused")) {
		t.Error("plain errors are not overlap violations")
	}
}
