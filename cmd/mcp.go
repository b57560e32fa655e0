package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/nunnai/marketmentor/internal/mcp"
	"github.com/nunnai/marketmentor/internal/search"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the mentor tools over MCP on stdio",
	Long:  `Starts a Model Context Protocol server on stdio exposing ask_mentor, web_search and format_answer to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Stdout carries the protocol, so logs stay on stderr.
		logger, err := newLogger(false)
		if err != nil {
			return err
		}
		defer logger.Sync()

		m, err := createMentor(cfg, logger)
		if err != nil {
			return fmt.Errorf("creating pipeline: %w", err)
		}
		you, google := createSearchers(cfg)

		mcpserver.Version = Version
		logger.Info("mentor MCP server started on stdio")

		srv := mcpserver.NewServer(m, []search.Searcher{you, google}, cfg.Footer, logger)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
