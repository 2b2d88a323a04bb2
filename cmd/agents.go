package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pmorel/db-agent/internal/config"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect and clean up hosted agents",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the agents provisioned on the hosted service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		gw, _ := newGateway(cfg)

		agents, err := gw.ListAgents(cmd.Context())
		if err != nil {
			return err
		}
		if len(agents) == 0 {
			pterm.Println("Aucun agent disponible.")
			return nil
		}

		pterm.Println("\nListe des agents :")
		for _, a := range agents {
			pterm.Printf("Agent ID: %s, Name: %s, Model: %s\n", a.ID, a.Name, a.Model)
		}
		return nil
	},
}

var agentsDeleteCmd = &cobra.Command{
	Use:   "delete <agent-id>",
	Short: "Delete a hosted agent by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		gw, _ := newGateway(cfg)

		id := args[0]
		if err := gw.DeleteAgent(cmd.Context(), id); err != nil {
			pterm.Error.Printf("Erreur lors de la suppression de l'agent %s: %v\n", id, err)
			return err
		}
		pterm.Success.Printf("Agent %s supprimé avec succès.\n", id)
		return nil
	},
}

func init() {
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsDeleteCmd)
	rootCmd.AddCommand(agentsCmd)
}
