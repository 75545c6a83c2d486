package catalog

import "context"

// Driver defines the operations the application needs from a TAP service.
// All implementations must be safe for concurrent use.
type Driver interface {
	// Connect points the driver at a TAP sync endpoint and checks that it
	// answers ADQL queries.
	Connect(ctx context.Context, endpoint string) error

	// Close releases the driver's connection state.
	Close() error

	// Ping checks that the service still answers.
	Ping(ctx context.Context) error

	// ListSchemas returns the schema names published by the service.
	ListSchemas(ctx context.Context) ([]string, error)

	// ListTables returns the table names of a schema.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// GetColumns returns the columns of a table.
	GetColumns(ctx context.Context, table string) ([]Column, error)

	// CountRows returns the number of rows in a table.
	CountRows(ctx context.Context, table string) (int64, error)

	// ExecuteQuery runs an ADQL query and returns its rows as text cells.
	ExecuteQuery(ctx context.Context, query string) (*QueryResult, error)

	// ServiceName returns a short name for the connected service.
	ServiceName() string
}
