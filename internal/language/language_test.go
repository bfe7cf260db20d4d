package language

import (
	"errors"
	"testing"

	graphql "github.com/hanpama/watchquery/internal/graphql"
)

func TestParseQuery(t *testing.T) {
	doc, err := ParseQuery(`query Hero { hero { id } }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Operations) != 1 {
		t.Fatalf("expected one operation, got %d", len(doc.Operations))
	}

	if _, err := ParseQuery(`query {`); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestMustParseQueryPanicsOnSyntaxError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustParseQuery(`query {`)
}

func TestVerifyOperationType(t *testing.T) {
	query := MustParseQuery(`query Hero { hero { id } }`)
	mutation := MustParseQuery(`mutation Save { save { id } }`)

	if err := VerifyOperationType(query, Query); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var inv *graphql.InvariantError
	if err := VerifyOperationType(mutation, Query); !errors.As(err, &inv) {
		t.Fatalf("expected invariant error, got %v", err)
	}
	if err := VerifyOperationType(nil, Query); !errors.As(err, &inv) {
		t.Fatalf("expected invariant error for nil document, got %v", err)
	}
}

func TestOperationName(t *testing.T) {
	if got := OperationName(MustParseQuery(`query Hero { hero { id } }`)); got != "Hero" {
		t.Fatalf("expected Hero, got %q", got)
	}
	if got := OperationName(MustParseQuery(`{ hero { id } }`)); got != "" {
		t.Fatalf("expected empty name for anonymous operation, got %q", got)
	}
}
