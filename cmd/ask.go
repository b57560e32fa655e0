package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/nunnai/marketmentor/internal/progress"
	"github.com/nunnai/marketmentor/internal/widget"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question through the widget client",
	Long: `Sends one question the way the chat widget does: through the backend's
/ask endpoint, or straight to the completion API in direct mode. The answer is
printed as widget HTML or rendered for the terminal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("render", "terminal", "Output format: terminal or html")
	askCmd.Flags().Duration("timeout", 0, "Request timeout (overrides widget.timeout)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	render, err := cmd.Flags().GetString("render")
	if err != nil {
		return fmt.Errorf("reading --render: %w", err)
	}
	if render != "terminal" && render != "html" {
		return fmt.Errorf("invalid --render %q: must be terminal or html", render)
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("reading --timeout: %w", err)
	}
	if cmd.Flags().Changed("timeout") && timeout <= 0 {
		return fmt.Errorf("invalid --timeout %s: must be positive", timeout)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Widget.Timeout = timeout
	}

	logger, err := newLogger(true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	transport, err := createTransport(cfg)
	if err != nil {
		return err
	}

	ctl := widget.New(transport,
		widget.WithTimeout(cfg.Widget.Timeout),
		widget.WithIndicator(progress.NewIndicator(os.Stderr, "Thinking")),
		widget.WithFooter(cfg.Footer),
		widget.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := ctl.Submit(ctx, strings.Join(args, " "))
	if out.Kind != widget.KindSuccess {
		return fmt.Errorf("%s (%s)", out.Message(), out.Kind)
	}

	if render == "html" {
		fmt.Println(out.HTML)
		return nil
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return fmt.Errorf("creating terminal renderer: %w", err)
	}
	text, err := r.Render(out.Raw)
	if err != nil {
		return fmt.Errorf("rendering answer: %w", err)
	}
	fmt.Print(text)
	return nil
}
