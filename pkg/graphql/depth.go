package graphql

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// DefaultMaxDepth allows node -> members -> ports -> connections.
const DefaultMaxDepth = 5

// calculateQueryDepth calculates the maximum depth of a GraphQL query
func calculateQueryDepth(document *ast.Document) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if frag, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[frag.Name.Value] = frag
		}
	}

	maxDepth := 0
	for _, definition := range document.Definitions {
		if def, ok := definition.(*ast.OperationDefinition); ok {
			depth := selectionSetDepth(def.SelectionSet, 1, fragments, map[string]bool{})
			if depth > maxDepth {
				maxDepth = depth
			}
		}
	}

	return maxDepth
}

// selectionSetDepth recursively calculates the depth of a selection set.
// Fragment spreads are expanded in place; visiting marks the spreads on the
// current path so a cyclic fragment cannot recurse forever.
func selectionSetDepth(set *ast.SelectionSet, current int, fragments map[string]*ast.FragmentDefinition, visiting map[string]bool) int {
	if set == nil || len(set.Selections) == 0 {
		return current
	}

	maxDepth := current
	for _, selection := range set.Selections {
		var depth int
		switch sel := selection.(type) {
		case *ast.Field:
			if isIntrospectionField(sel.Name.Value) || sel.SelectionSet == nil {
				continue
			}
			depth = selectionSetDepth(sel.SelectionSet, current+1, fragments, visiting)

		case *ast.InlineFragment:
			depth = selectionSetDepth(sel.SelectionSet, current, fragments, visiting)

		case *ast.FragmentSpread:
			name := sel.Name.Value
			frag, ok := fragments[name]
			if !ok || visiting[name] {
				continue
			}
			visiting[name] = true
			depth = selectionSetDepth(frag.SelectionSet, current, fragments, visiting)
			delete(visiting, name)
		}
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	return maxDepth
}

func isIntrospectionField(fieldName string) bool {
	return strings.HasPrefix(fieldName, "__")
}

// ValidateQueryDepth validates a query against the depth limit
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	if depth := calculateQueryDepth(document); depth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", depth, maxDepth)
	}

	return nil
}

// ExecuteWithDepthLimit executes a request after checking its depth. A
// maxDepth of zero or less disables the check.
func ExecuteWithDepthLimit(ctx context.Context, schema graphql.Schema, req GraphQLRequest, maxDepth int) *graphql.Result {
	if maxDepth > 0 {
		if err := ValidateQueryDepth(req.Query, maxDepth); err != nil {
			return &graphql.Result{
				Errors: []gqlerrors.FormattedError{
					gqlerrors.FormatError(err),
				},
			}
		}
	}

	return Execute(ctx, schema, req)
}
