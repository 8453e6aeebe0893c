package main

import (
	"fmt"

	"designflow/internal/figma"

	"github.com/spf13/cobra"
)

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Design tool utilities",
}

var designModeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Show the design tool operating mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter := figma.NewAdapter(cfg.Figma, cfg.Paths, logger)
		fmt.Println(adapter.Mode())
		return nil
	},
}

var designValidateTokenCmd = &cobra.Command{
	Use:   "validate-token",
	Short: "Validate the configured design tool API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter := figma.NewAdapter(cfg.Figma, cfg.Paths, logger)
		user, err := adapter.ValidateToken(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Token valid: %s <%s>\n", user.Handle, user.Email)
		return nil
	},
}

func init() {
	designCmd.AddCommand(designModeCmd)
	designCmd.AddCommand(designValidateTokenCmd)
}
