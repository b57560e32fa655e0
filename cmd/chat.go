package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/logging"
	"github.com/nunnai/marketmentor/internal/tui"
)

var chatLogFile string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat widget in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// The alternate screen owns the terminal, so logs go to a file or nowhere.
		logger := zap.NewNop()
		if chatLogFile != "" {
			logger, err = logging.NewFile(chatLogFile, verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()
		}

		transport, err := createTransport(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		model := tui.New(ctx, transport, tui.Options{
			Timeout: cfg.Widget.Timeout,
			Logger:  logger,
			Title:   cfg.LLM.Title,
		})
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("running chat: %w", err)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatLogFile, "log-file", "", "Write logs to this file")
	rootCmd.AddCommand(chatCmd)
}
