package tools

import (
	"context"
	"encoding/json"

	"github.com/pmorel/db-agent/internal/registry"
)

// ListConnectionsTool reports the names of all registered connections, in
// registry file order.
type ListConnectionsTool struct {
	registry *registry.Registry
}

var _ ToolExecutor = (*ListConnectionsTool)(nil)

func NewListConnectionsTool(reg *registry.Registry) *ListConnectionsTool {
	return &ListConnectionsTool{registry: reg}
}

func (lt *ListConnectionsTool) Definition() Tool {
	return NewFunctionTool(
		"list_available_connections",
		"Liste les noms des connexions de base de données disponibles.",
		JSONSchema{
			Type:       "object",
			Properties: map[string]*JSONSchema{},
		},
	)
}

func (lt *ListConnectionsTool) Execute(ctx context.Context, arguments string) string {
	names, err := lt.registry.List()
	if err != nil {
		return ErrorPayload(err.Error())
	}
	return mustMarshal(map[string][]string{"connections": names})
}

// GetConnectionStringTool resolves a registered connection name to its
// connection string.
type GetConnectionStringTool struct {
	registry *registry.Registry
}

var _ ToolExecutor = (*GetConnectionStringTool)(nil)

func NewGetConnectionStringTool(reg *registry.Registry) *GetConnectionStringTool {
	return &GetConnectionStringTool{registry: reg}
}

func (gt *GetConnectionStringTool) Definition() Tool {
	return NewFunctionTool(
		"get_connection_string",
		"Retourne la chaîne de connexion correspondant à un nom de connexion enregistré.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"name": {
					Type:        "string",
					Description: "Nom de la connexion enregistrée.",
				},
			},
			Required: []string{"name"},
		},
	)
}

func (gt *GetConnectionStringTool) Execute(ctx context.Context, arguments string) string {
	var args struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorPayload("invalid arguments: " + err.Error())
	}

	connString, err := gt.registry.Resolve(args.Name)
	if err != nil {
		return ErrorPayload(err.Error())
	}
	return mustMarshal(map[string]string{"connection_string": connString})
}
