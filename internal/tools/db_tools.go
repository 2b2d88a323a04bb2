package tools

import (
	"context"
	"encoding/json"

	"github.com/pmorel/db-agent/internal/database"
	"github.com/pmorel/db-agent/internal/registry"
)

// connParam is the shared schema fragment for the connection argument. Tools
// accept either a name from the connection registry or a raw connection
// string; names are resolved through the registry first.
func connParam() *JSONSchema {
	return &JSONSchema{
		Type:        "string",
		Description: "Connection string of the target database, or the name of a registered connection.",
	}
}

// resolveConn maps a tool argument to a usable connection string. Values that
// are not registered names pass through unchanged as raw connection strings.
func resolveConn(reg *registry.Registry, value string) string {
	if reg == nil {
		return value
	}
	if resolved, err := reg.Resolve(value); err == nil {
		return resolved
	}
	return value
}

// QueryTool executes a read query and returns the rows as a JSON array of
// records. The SQL text from the hosted agent is executed as-is: the model is
// the trusted caller on this boundary, and no sanitization is applied.
type QueryTool struct {
	registry *registry.Registry
}

var _ ToolExecutor = (*QueryTool)(nil)

func NewQueryTool(reg *registry.Registry) *QueryTool {
	return &QueryTool{registry: reg}
}

func (qt *QueryTool) Definition() Tool {
	return NewFunctionTool(
		"query_database",
		"Exécute une requête SQL de lecture sur la base de données et retourne les résultats sous forme de liste d'enregistrements JSON.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"sql_query": {
					Type:        "string",
					Description: "La requête SQL à exécuter.",
				},
				"connection_string": connParam(),
			},
			Required: []string{"sql_query", "connection_string"},
		},
	)
}

func (qt *QueryTool) Execute(ctx context.Context, arguments string) string {
	var args struct {
		SQLQuery         string `json:"sql_query"`
		ConnectionString string `json:"connection_string"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorPayload("invalid arguments: " + err.Error())
	}

	conn := resolveConn(qt.registry, args.ConnectionString)
	_, records, err := database.Query(ctx, conn, args.SQLQuery)
	if err != nil {
		return ErrorPayload(err.Error())
	}
	return mustMarshal(records)
}

// SchemaTool reports the tables of the database and their columns, with the
// driver-reported type text.
type SchemaTool struct {
	registry *registry.Registry
}

var _ ToolExecutor = (*SchemaTool)(nil)

func NewSchemaTool(reg *registry.Registry) *SchemaTool {
	return &SchemaTool{registry: reg}
}

func (st *SchemaTool) Definition() Tool {
	return NewFunctionTool(
		"get_database_schema",
		"Récupère le schéma de la base de données : noms des tables et leurs colonnes avec les types.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"connection_string": connParam(),
			},
			Required: []string{"connection_string"},
		},
	)
}

func (st *SchemaTool) Execute(ctx context.Context, arguments string) string {
	var args struct {
		ConnectionString string `json:"connection_string"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorPayload("invalid arguments: " + err.Error())
	}

	conn := resolveConn(st.registry, args.ConnectionString)
	schema, err := database.Schema(ctx, conn)
	if err != nil {
		return ErrorPayload(err.Error())
	}
	return mustMarshal(schema)
}

// ExecTool runs a statement expected to mutate state (INSERT, UPDATE, DDL).
// The change is committed before the tool returns. Same trust boundary on the
// raw SQL as QueryTool.
type ExecTool struct {
	registry *registry.Registry
}

var _ ToolExecutor = (*ExecTool)(nil)

func NewExecTool(reg *registry.Registry) *ExecTool {
	return &ExecTool{registry: reg}
}

func (et *ExecTool) Definition() Tool {
	return NewFunctionTool(
		"execute_sql",
		"Exécute une requête SQL de modification (INSERT, UPDATE, DELETE, DDL) et valide la transaction.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"sql_query": {
					Type:        "string",
					Description: "La requête SQL à exécuter.",
				},
				"connection_string": connParam(),
			},
			Required: []string{"sql_query", "connection_string"},
		},
	)
}

func (et *ExecTool) Execute(ctx context.Context, arguments string) string {
	var args struct {
		SQLQuery         string `json:"sql_query"`
		ConnectionString string `json:"connection_string"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorPayload("invalid arguments: " + err.Error())
	}

	conn := resolveConn(et.registry, args.ConnectionString)
	if _, err := database.Execute(ctx, conn, args.SQLQuery); err != nil {
		return ErrorPayload(err.Error())
	}
	return messagePayload("Requête exécutée avec succès.")
}
