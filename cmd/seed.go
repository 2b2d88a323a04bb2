package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pmorel/db-agent/internal/database"
)

var seedDBPath string

// seedCmd creates the local demo database the default connection registry
// points at, so a fresh checkout has something to explore.
var seedCmd = &cobra.Command{
	Use:   "seed-db",
	Short: "Create and populate the sample SQLite database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		_, err := database.Execute(ctx, seedDBPath, `
			CREATE TABLE IF NOT EXISTS commandes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				client TEXT,
				produit TEXT,
				quantite INTEGER,
				prix REAL,
				date TEXT
			)`)
		if err != nil {
			return err
		}

		inserted, err := database.Execute(ctx, seedDBPath, `
			INSERT INTO commandes (client, produit, quantite, prix, date) VALUES
				('Alice', 'Ordinateur portable', 1, 999.99, '2024-04-02'),
				('Bob', 'Casque audio', 2, 199.50, '2024-04-05'),
				('Charlie', 'Souris sans fil', 3, 29.99, '2024-03-28'),
				('Alice', 'Clavier mécanique', 1, 89.99, '2024-04-12')`)
		if err != nil {
			return err
		}

		pterm.Success.Printf("Seeded %s with %d rows in table commandes.\n", seedDBPath, inserted)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedDBPath, "db", "ma_base_de_donnees.db", "Path of the SQLite database to create")
	rootCmd.AddCommand(seedCmd)
}
