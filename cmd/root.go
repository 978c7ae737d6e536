package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/energy-tools/regiomap/internal/config"
	"github.com/energy-tools/regiomap/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "regiomap",
	Short: "Region assignment for energy system datasets",
	Long:  "Assigns points to polygon regions with an adaptive buffer search, aggregates power plant, population, weather and demand data per region, and records runs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens the run database configured under paths.database.
func initStore() (store.Store, error) {
	return store.NewSQLite(cfg.Paths.Database)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
