package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/mclrc/vizier/internal/catalog"
)

// SchemaTree represents the loaded schema hierarchy for the explorer.
type SchemaTree struct {
	Service string
	Schemas []SchemaNode
}

// SchemaNode holds a schema name and, once loaded, its tables.
type SchemaNode struct {
	Name   string
	Tables []string
}

// Service coordinates application-level operations between the UI and the
// catalog driver.
type Service struct {
	driver   catalog.Driver
	logger   *slog.Logger
	endpoint string
}

// NewService creates a new application service.
func NewService(driver catalog.Driver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{driver: driver, logger: logger}
}

// Connect points the service at a TAP endpoint.
func (s *Service) Connect(ctx context.Context, endpoint string) error {
	if err := s.driver.Connect(ctx, endpoint); err != nil {
		s.logger.Warn("connect failed", "endpoint", endpoint, "error", err)
		return &ErrConnection{Endpoint: endpoint, Cause: err}
	}
	s.endpoint = endpoint
	s.logger.Info("connected", "endpoint", endpoint, "service", s.driver.ServiceName())
	return nil
}

// Disconnect closes the driver.
func (s *Service) Disconnect() error {
	return s.driver.Close()
}

// Endpoint returns the endpoint of the last successful Connect.
func (s *Service) Endpoint() string {
	return s.endpoint
}

// LoadSchemaTree fetches the schema names. Tables are loaded per schema
// with LoadTables since large services publish thousands of them.
func (s *Service) LoadSchemaTree(ctx context.Context) (*SchemaTree, error) {
	schemas, err := s.driver.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}

	tree := &SchemaTree{
		Service: s.driver.ServiceName(),
		Schemas: make([]SchemaNode, 0, len(schemas)),
	}
	for _, schema := range schemas {
		tree.Schemas = append(tree.Schemas, SchemaNode{Name: schema})
	}
	return tree, nil
}

// LoadTables fetches the table names of one schema.
func (s *Service) LoadTables(ctx context.Context, schema string) ([]string, error) {
	return s.driver.ListTables(ctx, schema)
}

// LoadColumns fetches column metadata for a table.
func (s *Service) LoadColumns(ctx context.Context, table string) ([]catalog.Column, error) {
	return s.driver.GetColumns(ctx, table)
}

// CountRows returns the row count of a table.
func (s *Service) CountRows(ctx context.Context, table string) (int64, error) {
	return s.driver.CountRows(ctx, table)
}

// ExecuteQuery runs an ADQL query and returns the results.
func (s *Service) ExecuteQuery(ctx context.Context, query string) (*catalog.QueryResult, error) {
	start := time.Now()
	result, err := s.driver.ExecuteQuery(ctx, query)
	if err != nil {
		s.logger.Warn("query failed", "query", query, "error", err)
		return nil, &ErrQuery{Query: query, Cause: err}
	}
	s.logger.Info("query executed", "rows", result.RowCount, "duration", time.Since(start))
	return result, nil
}

// ServiceName returns the connected service's name.
func (s *Service) ServiceName() string {
	return s.driver.ServiceName()
}
