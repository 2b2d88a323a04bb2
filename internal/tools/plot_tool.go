package tools

import (
	"context"
	"encoding/json"

	"github.com/pmorel/db-agent/internal/database"
	"github.com/pmorel/db-agent/internal/plot"
	"github.com/pmorel/db-agent/internal/registry"
)

// PlotTool runs a query and renders the result as a chart file. The returned
// payload carries the path of the written PNG.
type PlotTool struct {
	registry *registry.Registry
	outDir   string
}

var _ ToolExecutor = (*PlotTool)(nil)

// NewPlotTool creates a plot tool writing artifacts under outDir by default.
// The hosted agent may override the directory per call via output_dir.
func NewPlotTool(reg *registry.Registry, outDir string) *PlotTool {
	return &PlotTool{registry: reg, outDir: outDir}
}

func (pt *PlotTool) Definition() Tool {
	return NewFunctionTool(
		"create_plot_from_query",
		"Exécute une requête SQL et génère un graphique (bar, line ou scatter) à partir des résultats. Retourne le chemin du fichier image.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"sql_query": {
					Type:        "string",
					Description: "La requête SQL dont les résultats seront tracés.",
				},
				"x_column": {
					Type:        "string",
					Description: "Colonne du résultat utilisée pour l'axe des X.",
				},
				"y_column": {
					Type:        "string",
					Description: "Colonne du résultat utilisée pour l'axe des Y.",
				},
				"plot_type": {
					Type:        "string",
					Description: "Type de graphique.",
					Enum:        []string{plot.KindBar, plot.KindLine, plot.KindScatter},
				},
				"connection_string": connParam(),
				"output_dir": {
					Type:        "string",
					Description: "Répertoire de sortie des images (optionnel).",
				},
			},
			Required: []string{"sql_query", "x_column", "y_column", "plot_type", "connection_string"},
		},
	)
}

func (pt *PlotTool) Execute(ctx context.Context, arguments string) string {
	var args struct {
		SQLQuery         string `json:"sql_query"`
		XColumn          string `json:"x_column"`
		YColumn          string `json:"y_column"`
		PlotType         string `json:"plot_type"`
		ConnectionString string `json:"connection_string"`
		OutputDir        string `json:"output_dir"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorPayload("invalid arguments: " + err.Error())
	}

	conn := resolveConn(pt.registry, args.ConnectionString)
	columns, records, err := database.Query(ctx, conn, args.SQLQuery)
	if err != nil {
		return ErrorPayload(err.Error())
	}

	outDir := args.OutputDir
	if outDir == "" {
		outDir = pt.outDir
	}

	path, err := plot.Render(columns, records, args.XColumn, args.YColumn, args.PlotType, outDir)
	if err != nil {
		return ErrorPayload(err.Error())
	}
	return mustMarshal(map[string]string{"image_path": path})
}
