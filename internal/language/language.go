package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	graphql "github.com/hanpama/watchquery/internal/graphql"
)

// ParseQuery parses an executable GraphQL document.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// MustParseQuery parses source and panics on syntax errors. Intended for
// documents embedded as literals, where a parse failure is a programming bug.
func MustParseQuery(source string) *QueryDocument {
	doc, err := ParseQuery(source)
	if err != nil {
		panic(err)
	}
	return doc
}

// VerifyOperationType checks that doc's operation kind equals required.
// A nil document, an empty document, or an operation kind mismatch is a
// configuration error and fails with an InvariantError.
func VerifyOperationType(doc *QueryDocument, required Operation) error {
	if doc == nil {
		return graphql.Invariantf("expected a parsed GraphQL document, got nil")
	}
	op := primaryOperation(doc)
	if op == nil {
		return graphql.Invariantf("document contains no operations")
	}
	if op.Operation != required {
		return graphql.Invariantf(
			"running a %s requires a %s operation, but the document contains a %s",
			required, required, op.Operation)
	}
	return nil
}

// primaryOperation returns the document's first operation definition.
func primaryOperation(doc *QueryDocument) *OperationDefinition {
	if len(doc.Operations) == 0 {
		return nil
	}
	return doc.Operations[0]
}

// OperationName returns the name of the document's primary operation, or ""
// for anonymous operations.
func OperationName(doc *QueryDocument) string {
	op := primaryOperation(doc)
	if op == nil {
		return ""
	}
	return op.Name
}
