package tapschema

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/mclrc/vizier/internal/catalog"
	"github.com/mclrc/vizier/tap"
)

var errNotConnected = errors.New("not connected")

var _ catalog.Driver = (*Driver)(nil)

// Driver implements catalog.Driver for any TAP service by querying its
// TAP_SCHEMA tables.
type Driver struct {
	opts []tap.Option

	mu      sync.RWMutex
	client  *tap.Client
	service string
}

// New creates a driver. The options are applied to every client the
// driver creates on Connect.
func New(opts ...tap.Option) *Driver {
	return &Driver{opts: opts}
}

// Connect creates a client for endpoint and checks that TAP_SCHEMA can be
// queried through it.
func (d *Driver) Connect(ctx context.Context, endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("parse endpoint: unsupported scheme %q", u.Scheme)
	}

	client := tap.NewClient(endpoint, d.opts...)
	if _, err := pingQuery(client).Send(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	d.mu.Lock()
	d.client = client
	d.service = u.Host
	d.mu.Unlock()
	return nil
}

// Close forgets the current endpoint.
func (d *Driver) Close() error {
	d.mu.Lock()
	d.client = nil
	d.service = ""
	d.mu.Unlock()
	return nil
}

// Ping checks that the service still answers ADQL queries.
func (d *Driver) Ping(ctx context.Context) error {
	client, err := d.current()
	if err != nil {
		return err
	}
	_, err = pingQuery(client).Send(ctx)
	return err
}

// ListSchemas returns the schema names, sorted.
func (d *Driver) ListSchemas(ctx context.Context) ([]string, error) {
	client, err := d.current()
	if err != nil {
		return nil, err
	}
	res, err := schemasQuery(client).Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}

	schemas := make([]string, 0, res.Len())
	for _, r := range res.Data() {
		schemas = append(schemas, r.SchemaName)
	}
	sort.Strings(schemas)
	return schemas, nil
}

// ListTables returns the table names of a schema, sorted.
func (d *Driver) ListTables(ctx context.Context, schema string) ([]string, error) {
	client, err := d.current()
	if err != nil {
		return nil, err
	}
	res, err := tablesQuery(client, schema).Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	tables := make([]string, 0, res.Len())
	for _, r := range res.Data() {
		tables = append(tables, r.TableName)
	}
	sort.Strings(tables)
	return tables, nil
}

// GetColumns returns the columns of a table in the order the service
// lists them.
func (d *Driver) GetColumns(ctx context.Context, table string) ([]catalog.Column, error) {
	client, err := d.current()
	if err != nil {
		return nil, err
	}
	res, err := columnsQuery(client, table).Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	columns := make([]catalog.Column, 0, res.Len())
	for _, r := range res.Data() {
		columns = append(columns, catalog.Column{
			Name:        r.ColumnName,
			DataType:    deref(r.Datatype),
			Unit:        deref(r.Unit),
			UCD:         deref(r.UCD),
			Description: deref(r.Description),
		})
	}
	return columns, nil
}

// CountRows counts the rows of a table with COUNT(*). On large catalogs
// this can take as long as the service allows a query to run.
func (d *Driver) CountRows(ctx context.Context, table string) (int64, error) {
	client, err := d.current()
	if err != nil {
		return 0, err
	}
	res, err := countQuery(client, table).Send(ctx)
	if err != nil {
		return 0, fmt.Errorf("row count: %w", err)
	}
	if res.IsEmpty() {
		return 0, nil
	}
	return res.Data()[0].RowCount, nil
}

// ExecuteQuery runs an ADQL query and returns the rows as text cells.
func (d *Driver) ExecuteQuery(ctx context.Context, query string) (*catalog.QueryResult, error) {
	client, err := d.current()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := client.Rows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return catalog.Tabulate(res, time.Since(start)), nil
}

// ServiceName returns the host of the connected endpoint.
func (d *Driver) ServiceName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.service
}

func (d *Driver) current() (*tap.Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.client == nil {
		return nil, errNotConnected
	}
	return d.client, nil
}
