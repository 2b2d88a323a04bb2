package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmorel/db-agent/internal/database"
	"github.com/pmorel/db-agent/internal/registry"
)

// newFixture prepares a sqlite database with one seeded table and a registry
// file that knows it under the name "main".
func newFixture(t *testing.T) (*registry.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	dsn := "sqlite:///" + filepath.Join(dir, "test.db")

	ctx := context.Background()
	_, err := database.Execute(ctx, dsn, "CREATE TABLE commandes (id INTEGER PRIMARY KEY, client TEXT, quantite INTEGER)")
	require.NoError(t, err)
	_, err = database.Execute(ctx, dsn, "INSERT INTO commandes (id, client, quantite) VALUES (1, 'Alice', 3)")
	require.NoError(t, err)

	regPath := filepath.Join(dir, "connections.json")
	content := fmt.Sprintf(`[{"name": "main", "connection_string": %q}]`, dsn)
	require.NoError(t, os.WriteFile(regPath, []byte(content), 0o644))

	return registry.New(regPath), dsn
}

func decodePayload(t *testing.T, payload string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(payload), v))
}

func TestQueryToolReturnsRecords(t *testing.T) {
	t.Parallel()
	reg, _ := newFixture(t)
	tool := NewQueryTool(reg)

	payload := tool.Execute(context.Background(), `{"sql_query": "SELECT client, quantite FROM commandes", "connection_string": "main"}`)

	var records []map[string]any
	decodePayload(t, payload, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "Alice", records[0]["client"])
	assert.Equal(t, float64(3), records[0]["quantite"])
}

func TestQueryToolErrorIsPayloadNotPanic(t *testing.T) {
	t.Parallel()
	reg, _ := newFixture(t)
	tool := NewQueryTool(reg)

	payload := tool.Execute(context.Background(), `{"sql_query": "SELECT * FROM nope", "connection_string": "main"}`)

	var result map[string]string
	decodePayload(t, payload, &result)
	assert.NotEmpty(t, result["error"])
}

func TestQueryToolAcceptsRawConnectionString(t *testing.T) {
	t.Parallel()
	reg, dsn := newFixture(t)
	tool := NewQueryTool(reg)

	args := fmt.Sprintf(`{"sql_query": "SELECT COUNT(*) AS n FROM commandes", "connection_string": %q}`, dsn)
	payload := tool.Execute(context.Background(), args)

	var records []map[string]any
	decodePayload(t, payload, &records)
	require.Len(t, records, 1)
	assert.Equal(t, float64(1), records[0]["n"])
}

func TestSchemaTool(t *testing.T) {
	t.Parallel()
	reg, _ := newFixture(t)
	tool := NewSchemaTool(reg)

	payload := tool.Execute(context.Background(), `{"connection_string": "main"}`)

	var schema map[string][]map[string]string
	decodePayload(t, payload, &schema)
	require.Contains(t, schema, "commandes")
	assert.Equal(t, "client", schema["commandes"][1]["colonne"])
	assert.Equal(t, "TEXT", schema["commandes"][1]["type"])
}

func TestExecToolCommitsBeforeReturning(t *testing.T) {
	t.Parallel()
	reg, _ := newFixture(t)
	ctx := context.Background()

	exec := NewExecTool(reg)
	payload := exec.Execute(ctx, `{"sql_query": "INSERT INTO commandes (id, client, quantite) VALUES (2, 'Bob', 5)", "connection_string": "main"}`)

	var result map[string]string
	decodePayload(t, payload, &result)
	assert.Equal(t, "Requête exécutée avec succès.", result["message"])

	// A separate connection must see the committed row.
	query := NewQueryTool(reg)
	payload = query.Execute(ctx, `{"sql_query": "SELECT client FROM commandes WHERE id = 2", "connection_string": "main"}`)
	var records []map[string]any
	decodePayload(t, payload, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "Bob", records[0]["client"])
}

func TestPlotTool(t *testing.T) {
	t.Parallel()
	reg, _ := newFixture(t)
	outDir := filepath.Join(t.TempDir(), "plots")
	tool := NewPlotTool(reg, outDir)
	ctx := context.Background()

	t.Run("valid request writes a file", func(t *testing.T) {
		payload := tool.Execute(ctx, `{"sql_query": "SELECT client, quantite FROM commandes", "x_column": "client", "y_column": "quantite", "plot_type": "bar", "connection_string": "main"}`)

		var result map[string]string
		decodePayload(t, payload, &result)
		require.NotEmpty(t, result["image_path"], "payload: %s", payload)
		_, err := os.Stat(result["image_path"])
		assert.NoError(t, err)
	})

	t.Run("unknown kind names the kind", func(t *testing.T) {
		payload := tool.Execute(ctx, `{"sql_query": "SELECT client, quantite FROM commandes", "x_column": "client", "y_column": "quantite", "plot_type": "donut", "connection_string": "main"}`)

		var result map[string]string
		decodePayload(t, payload, &result)
		assert.Contains(t, result["error"], "donut")
	})

	t.Run("missing columns name both columns", func(t *testing.T) {
		payload := tool.Execute(ctx, `{"sql_query": "SELECT client, quantite FROM commandes", "x_column": "ville", "y_column": "chiffre", "plot_type": "bar", "connection_string": "main"}`)

		var result map[string]string
		decodePayload(t, payload, &result)
		assert.Contains(t, result["error"], "ville")
		assert.Contains(t, result["error"], "chiffre")
	})
}

func TestConnectionTools(t *testing.T) {
	t.Parallel()
	reg, dsn := newFixture(t)
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		payload := NewListConnectionsTool(reg).Execute(ctx, `{}`)
		var result map[string][]string
		decodePayload(t, payload, &result)
		assert.Equal(t, []string{"main"}, result["connections"])
	})

	t.Run("resolve known", func(t *testing.T) {
		payload := NewGetConnectionStringTool(reg).Execute(ctx, `{"name": "main"}`)
		var result map[string]string
		decodePayload(t, payload, &result)
		assert.Equal(t, dsn, result["connection_string"])
	})

	t.Run("resolve unknown", func(t *testing.T) {
		payload := NewGetConnectionStringTool(reg).Execute(ctx, `{"name": "missing"}`)
		var result map[string]string
		decodePayload(t, payload, &result)
		assert.Equal(t, "Connexion 'missing' introuvable.", result["error"])
	})
}

func TestToolManager(t *testing.T) {
	t.Parallel()
	reg, _ := newFixture(t)

	manager := NewToolManager()
	manager.Register(NewQueryTool(reg))
	manager.Register(NewSchemaTool(reg))
	manager.Register(NewExecTool(reg))
	manager.Register(NewPlotTool(reg, t.TempDir()))
	manager.Register(NewListConnectionsTool(reg))
	manager.Register(NewGetConnectionStringTool(reg))

	assert.Equal(t, 6, manager.ToolCount())

	defs := manager.GetDefinitions()
	require.Len(t, defs, 6)
	assert.Equal(t, "query_database", defs[0].Function.Name)

	t.Run("unknown tool yields error payload", func(t *testing.T) {
		payload := manager.Execute(context.Background(), "no_such_tool", `{}`)
		var result map[string]string
		decodePayload(t, payload, &result)
		assert.Contains(t, result["error"], "no_such_tool")
	})
}
