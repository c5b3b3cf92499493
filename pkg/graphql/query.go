package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
)

// ExecuteQuery executes a GraphQL query against a schema
func ExecuteQuery(ctx context.Context, schema graphql.Schema, query string) *graphql.Result {
	return ExecuteQueryWithVariables(ctx, schema, query, nil, "")
}

// ExecuteQueryWithVariables executes a GraphQL query with variables and an
// optional operation name.
func ExecuteQueryWithVariables(ctx context.Context, schema graphql.Schema, query string, variables map[string]any, operation string) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
		OperationName:  operation,
		Context:        ctx,
	})
}
