// Package search decides whether a log record matches a JMESPath expression.
package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/jmespath/go-jmespath"

	"github.com/five82/plume/internal/record"
)

// Filter is a compiled search expression. It is safe for concurrent use.
type Filter struct {
	expr  string
	query *jmespath.JMESPath
}

// Compile parses expr once so it can be evaluated against many records.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("search expression is empty")
	}
	q, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile search %q: %w", expr, err)
	}
	return &Filter{expr: expr, query: q}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Match evaluates the expression against rec and reports whether the result
// is truthy. Evaluation errors count as no match.
func (f *Filter) Match(rec record.Record) bool {
	result, err := f.query.Search(record.ToInterface(record.Object(rec)))
	if err != nil {
		return false
	}
	return truthy(result)
}

// truthy mirrors how a log consumer tests a value: nil, false, zero and the
// empty string are false, everything else is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}
