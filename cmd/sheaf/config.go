package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/sheaf/internal/config"
	"github.com/jackzampolin/sheaf/internal/home"
	"github.com/jackzampolin/sheaf/internal/report"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sheaf configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file to the sheaf home",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		if h.ConfigExists() && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", h.ConfigPath())
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}

		fmt.Println("Wrote", h.ConfigPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		return report.Output(mgr.Get())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
