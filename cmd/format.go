package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nunnai/marketmentor/internal/format"
)

var formatCmd = &cobra.Command{
	Use:   "format [file]",
	Short: "Format answer text into widget HTML",
	Long:  `Reads a raw answer from the file (or stdin) and prints the HTML the widget would render for it.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noFooter, _ := cmd.Flags().GetBool("no-footer")

		var (
			raw []byte
			err error
		)
		if len(args) == 1 && args[0] != "-" {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("reading answer: %w", err)
		}

		html := format.Format(string(raw))
		if !noFooter {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			html = cfg.Footer.Append(html)
		}

		fmt.Fprintln(cmd.OutOrStdout(), html)
		return nil
	},
}

func init() {
	formatCmd.Flags().Bool("no-footer", false, "Omit the support footer")
	rootCmd.AddCommand(formatCmd)
}
