package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
)

// ExecuteQuery executes a GraphQL query against a schema
func ExecuteQuery(ctx context.Context, schema graphql.Schema, query string) *graphql.Result {
	return Execute(ctx, schema, GraphQLRequest{Query: query})
}

// Execute runs a full request, including variables and operation name.
func Execute(ctx context.Context, schema graphql.Schema, req GraphQLRequest) *graphql.Result {
	params := graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	}

	return graphql.Do(params)
}
