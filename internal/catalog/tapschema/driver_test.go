package tapschema

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mclrc/vizier/internal/catalog"
	"github.com/mclrc/vizier/tap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService answers ADQL queries with canned TAP JSON bodies.
type fakeService struct {
	mu      sync.Mutex
	bodies  map[string]string
	queries []string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")

	f.mu.Lock()
	f.queries = append(f.queries, q)
	body, ok := f.bodies[q]
	f.mu.Unlock()

	if !ok {
		http.Error(w, "unknown query: "+q, http.StatusBadRequest)
		return
	}
	fmt.Fprint(w, body)
}

const pingADQL = "SELECT TOP 1 schema_name FROM TAP_SCHEMA.schemas "

func newService(t *testing.T, bodies map[string]string) (*fakeService, string) {
	t.Helper()
	if _, ok := bodies[pingADQL]; !ok {
		bodies[pingADQL] = `{"metadata":[{"name":"schema_name","ucd":""}],"data":[["TAP_SCHEMA"]]}`
	}
	svc := &fakeService{bodies: bodies}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)
	return svc, srv.URL + "/TAPVizieR/tap/sync"
}

func connect(t *testing.T, endpoint string) *Driver {
	t.Helper()
	d := New()
	require.NoError(t, d.Connect(context.Background(), endpoint))
	return d
}

func TestDriver_Connect(t *testing.T) {
	svc, endpoint := newService(t, map[string]string{})

	d := connect(t, endpoint)

	assert.Contains(t, endpoint, d.ServiceName())
	assert.Equal(t, []string{pingADQL}, svc.queries)
	assert.NoError(t, d.Ping(context.Background()))
}

func TestDriver_ConnectRejectsBadEndpoint(t *testing.T) {
	d := New()

	err := d.Connect(context.Background(), "ftp://example.org/tap")
	assert.ErrorContains(t, err, "unsupported scheme")

	_, err = d.ListSchemas(context.Background())
	assert.ErrorIs(t, err, errNotConnected)
}

func TestDriver_ConnectFailsWhenPingFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	d := New()
	err := d.Connect(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *tap.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Empty(t, d.ServiceName())
}

func TestDriver_ListSchemas(t *testing.T) {
	_, endpoint := newService(t, map[string]string{
		"SELECT schema_name FROM TAP_SCHEMA.schemas ": `{
			"metadata": [{"name": "schema_name", "datatype": "char", "ucd": ""}],
			"data": [["public"], ["TAP_SCHEMA"], ["I"]]
		}`,
	})

	schemas, err := connect(t, endpoint).ListSchemas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"I", "TAP_SCHEMA", "public"}, schemas)
}

func TestDriver_ListTables(t *testing.T) {
	_, endpoint := newService(t, map[string]string{
		"SELECT table_name FROM TAP_SCHEMA.tables WHERE schema_name = 'I'": `{
			"metadata": [{"name": "table_name", "ucd": ""}],
			"data": [["I/261/fonac"], ["I/239/hip_main"]]
		}`,
	})

	tables, err := connect(t, endpoint).ListTables(context.Background(), "I")
	require.NoError(t, err)
	assert.Equal(t, []string{"I/239/hip_main", "I/261/fonac"}, tables)
}

func TestDriver_GetColumns(t *testing.T) {
	_, endpoint := newService(t, map[string]string{
		"SELECT column_name, datatype, unit, ucd, description FROM TAP_SCHEMA.columns WHERE table_name = 'I/261/fonac'": `{
			"metadata": [
				{"name": "column_name", "ucd": ""},
				{"name": "datatype", "ucd": ""},
				{"name": "unit", "ucd": ""},
				{"name": "ucd", "ucd": ""},
				{"name": "description", "ucd": ""}
			],
			"data": [
				["recno", "INTEGER", null, "meta.record", "Record number"],
				["RAJ2000", "DOUBLE", "deg", "pos.eq.ra;meta.main", null]
			]
		}`,
	})

	columns, err := connect(t, endpoint).GetColumns(context.Background(), "I/261/fonac")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Column{
		{Name: "recno", DataType: "INTEGER", UCD: "meta.record", Description: "Record number"},
		{Name: "RAJ2000", DataType: "DOUBLE", Unit: "deg", UCD: "pos.eq.ra;meta.main"},
	}, columns)
}

func TestDriver_CountRows(t *testing.T) {
	_, endpoint := newService(t, map[string]string{
		`SELECT COUNT(*) AS row_count FROM "I/261/fonac" `: `{
			"metadata": [{"name": "row_count", "datatype": "long", "ucd": "meta.number"}],
			"data": [[194982]]
		}`,
	})

	n, err := connect(t, endpoint).CountRows(context.Background(), "I/261/fonac")
	require.NoError(t, err)
	assert.Equal(t, int64(194982), n)
}

func TestDriver_ExecuteQuery(t *testing.T) {
	const q = `SELECT TOP 2 recno, Bmag FROM "I/261/fonac"`
	_, endpoint := newService(t, map[string]string{
		q: `{
			"metadata": [
				{"name": "recno", "ucd": "meta.record"},
				{"name": "Bmag", "unit": "mag", "ucd": "phot.mag"}
			],
			"data": [[1, 10.52], [2, null]]
		}`,
	})

	res, err := connect(t, endpoint).ExecuteQuery(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"recno", "Bmag"}, res.Columns)
	assert.Equal(t, [][]string{{"1", "10.52"}, {"2", "null"}}, res.Rows)
	assert.Equal(t, 2, res.RowCount)
}

func TestDriver_ExecuteQueryWrapsServiceErrors(t *testing.T) {
	_, endpoint := newService(t, map[string]string{})
	d := connect(t, endpoint)

	_, err := d.ExecuteQuery(context.Background(), "SELECT nonsense")
	require.Error(t, err)

	var statusErr *tap.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestDriver_Close(t *testing.T) {
	_, endpoint := newService(t, map[string]string{})
	d := connect(t, endpoint)

	require.NoError(t, d.Close())
	assert.Empty(t, d.ServiceName())
	assert.ErrorIs(t, d.Ping(context.Background()), errNotConnected)
}
