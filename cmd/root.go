// Package cmd provides the command-line interface of the database
// exploration agent, built on Cobra. The subcommands share one composition
// root: configuration is loaded once, the tool set and the hosted agent
// gateway are built from it, and each command wires only what it needs.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pmorel/db-agent/internal/agent"
	"github.com/pmorel/db-agent/internal/config"
	"github.com/pmorel/db-agent/internal/registry"
	"github.com/pmorel/db-agent/internal/tools"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "db-agent",
	Short:         "Conversational database exploration agent",
	Long: `db-agent is a thin front end over a hosted LLM agent service.
The hosted agent answers questions about configured databases by calling
back into local tools: SQL queries, schema inspection, statement execution
and chart rendering. Run "db-agent serve" for the HTTP API or
"db-agent chat" for an interactive terminal session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML configuration file")
}

// newToolset builds the tool registry every agent front end exposes to the
// hosted service: the connection registry first, then the database and
// plotting tools bound to it.
func newToolset(cfg *config.Config) *tools.ToolManager {
	reg := registry.New(cfg.ConnectionsFile)

	manager := tools.NewToolManager()
	manager.Register(tools.NewQueryTool(reg))
	manager.Register(tools.NewSchemaTool(reg))
	manager.Register(tools.NewExecTool(reg))
	manager.Register(tools.NewPlotTool(reg, cfg.PlotsDir))
	manager.Register(tools.NewListConnectionsTool(reg))
	manager.Register(tools.NewGetConnectionStringTool(reg))
	return manager
}

// newGateway dials the hosted agent service and returns the gateway with
// the agent definition the front ends provision.
func newGateway(cfg *config.Config) (*agent.Gateway, agent.Definition) {
	toolset := newToolset(cfg)
	gw := agent.NewGateway(cfg.ProjectConnectionString, cfg.APIKey, toolset, cfg.PollInterval, cfg.RunTimeout)
	def := agent.Definition{
		Name:         cfg.AgentName,
		Model:        cfg.ModelDeployment,
		Instructions: cfg.AgentInstructions,
		Toolset:      toolset,
	}
	return gw, def
}
