package main

import (
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/deepchat/config"
	"github.com/mohammad-safakhou/deepchat/internal/store"
)

func migrateCMD() *cobra.Command {
	var cfgPath, dir, direction string
	var steps int
	m := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			dsn := cfg.Storage.Postgres.DSN()
			if dsn == "" {
				dsn = getenv("DATABASE_URL", "")
			}
			return store.Migrate(dir, dsn, direction, steps)
		},
	}
	m.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	m.Flags().StringVar(&dir, "dir", "file://migrations", "migrations source")
	m.Flags().StringVar(&direction, "direction", "up", "up or down")
	m.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	return m
}
