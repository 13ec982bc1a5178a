package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/deepchat/config"
	core "github.com/mohammad-safakhou/deepchat/internal/agent/core"
	"github.com/mohammad-safakhou/deepchat/internal/agent/telemetry"
)

func researchCMD() *cobra.Command {
	var cfgPath string
	r := &cobra.Command{
		Use:   "research [prompt]",
		Short: "Run one deep research round and print the report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			logger := log.New(cmd.ErrOrStderr(), "[RESEARCH] ", log.LstdFlags)
			tele := telemetry.NewTelemetry(config.TelemetryConfig{}, nil)
			agent, err := core.NewRouter(cfg, tele, logger)
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			report, err := agent.Route(context.Background(), core.AgentRequest{
				Messages: []core.Message{{Role: core.RoleUser, Content: prompt}},
				Tools:    core.ToolFlags{DeepResearch: true},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
	r.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return r
}
