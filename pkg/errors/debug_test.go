package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpPlainError(t *testing.T) {
	d := Dump(errors.New("boom"))
	if d.TopMessage != "boom" {
		t.Fatalf("unexpected top message %q", d.TopMessage)
	}
	if d.Code != "" {
		t.Fatalf("plain error should carry no code, got %q", d.Code)
	}
	if d.Chain != nil {
		t.Fatalf("unwrapped error should have no chain, got %v", d.Chain)
	}
}

func TestDumpWrappedTaxonomyError(t *testing.T) {
	cause := errors.New("row locked")
	d := Dump(Wrap(CodeDependency, cause, "update order status"))

	if d.Code != CodeDependency {
		t.Fatalf("expected code %s got %s", CodeDependency, d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected wrap chain, got %v", d.Chain)
	}
}

func TestDumpExtractsPostgresError(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "markets_phone_key",
		TableName:      "markets",
		Detail:         "Key (phone)=(+998901112233) already exists.",
	}
	d := Dump(fmt.Errorf("create market: %w", pgErr))

	if d.PGCode != "23505" {
		t.Fatalf("expected pg code 23505 got %q", d.PGCode)
	}
	if d.PGConstraint != "markets_phone_key" || d.PGTable != "markets" {
		t.Fatalf("pg metadata not extracted: %+v", d)
	}
}
