package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mclrc/vizier/internal/app"
	"github.com/mclrc/vizier/internal/catalog"
	"github.com/mclrc/vizier/internal/config"
)

// Results of the service calls below, delivered back to Update.
type (
	connectedMsg struct {
		endpoint string
		err      error
	}
	schemaLoadedMsg struct {
		tree *app.SchemaTree
		err  error
	}
	tablesLoadedMsg struct {
		schema string
		tables []string
		err    error
	}
	columnsLoadedMsg struct {
		schema  string
		table   string
		columns []catalog.Column
		err     error
	}
	queryExecutedMsg struct {
		query  string
		result *catalog.QueryResult
		err    error
	}
	endpointSavedMsg struct {
		name string
		err  error
	}
)

// bounded runs call off the UI goroutine with the endpoint's request
// timeout.
func bounded(timeout time.Duration, call func(ctx context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return call(ctx)
	}
}

func (m Model) timeout() time.Duration {
	return config.TimeoutFor(m.cfg, m.endpoint)
}

func (m Model) connectCmd(endpoint string) tea.Cmd {
	svc := m.service
	return bounded(config.TimeoutFor(m.cfg, endpoint), func(ctx context.Context) tea.Msg {
		return connectedMsg{endpoint: endpoint, err: svc.Connect(ctx, endpoint)}
	})
}

func (m Model) loadSchemaCmd() tea.Cmd {
	svc := m.service
	return bounded(m.timeout(), func(ctx context.Context) tea.Msg {
		tree, err := svc.LoadSchemaTree(ctx)
		return schemaLoadedMsg{tree: tree, err: err}
	})
}

func (m Model) loadTablesCmd(schema string) tea.Cmd {
	svc := m.service
	return bounded(m.timeout(), func(ctx context.Context) tea.Msg {
		tables, err := svc.LoadTables(ctx, schema)
		return tablesLoadedMsg{schema: schema, tables: tables, err: err}
	})
}

func (m Model) loadColumnsCmd(schema, table string) tea.Cmd {
	svc := m.service
	return bounded(m.timeout(), func(ctx context.Context) tea.Msg {
		columns, err := svc.LoadColumns(ctx, table)
		return columnsLoadedMsg{schema: schema, table: table, columns: columns, err: err}
	})
}

func (m Model) executeQueryCmd(query string) tea.Cmd {
	svc := m.service
	return bounded(m.timeout(), func(ctx context.Context) tea.Msg {
		res, err := svc.ExecuteQuery(ctx, query)
		return queryExecutedMsg{query: query, result: res, err: err}
	})
}

// saveEndpointCmd records a newly used endpoint in the config file under
// its derived name.
func (m Model) saveEndpointCmd(endpoint string) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		ep, err := config.ParseEndpoint(endpoint)
		if err != nil {
			return endpointSavedMsg{err: err}
		}
		if cfg.HasEndpoint(ep.Name) {
			return endpointSavedMsg{err: fmt.Errorf("name %s already in use", ep.Name)}
		}
		return endpointSavedMsg{name: ep.Name, err: config.SaveEndpoint(cfg, ep)}
	}
}
