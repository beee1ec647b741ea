package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pdflens/internal/adapters/terminal"
	"pdflens/internal/adapters/tui"
	"pdflens/internal/adapters/viewer"
	"pdflens/internal/application/commands"
	"pdflens/internal/bootstrap"
	"pdflens/internal/config"
)

var (
	configPath string
	overrides  config.Config
	regex      bool
	stack      *bootstrap.Stack
)

var rootCmd = &cobra.Command{
	Use:   "pdflens <query> [path]",
	Short: "Search PDFs and preview the matching pages",
	Long: `pdflens searches the PDFs under a directory and opens a two-pane
terminal UI: matches grouped by document on the left, the rendered page on
the right. Page and match navigation wrap across documents.

Examples:
  pdflens "heat equation" ~/papers
  pdflens --regex 'eigen(value|vector)s?' .`,
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		cfg, err := config.Load(config.LoadInput{
			ConfigPath: configPath,
			Env:        config.Environ(),
			Overrides:  overrides,
		})
		if err != nil {
			return err
		}
		stack, err = bootstrap.New(cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if stack == nil {
			return nil
		}
		err := stack.Close()
		stack = nil
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		query, root := args[0], searchRoot(args)

		builder, err := stack.Session(query, root, regex)
		if err != nil {
			return err
		}
		display, err := terminal.NewDisplay(stack.Config.Display)
		if err != nil {
			return err
		}

		app := tui.NewApp(builder, commands.NewPreviewCommand(stack.Render, display), tui.Options{
			Query:  query,
			Root:   builder.Root,
			Snap:   stack.Snap,
			Copy:   clipboard.WriteAll,
			Viewer: viewer.NewOpener(),
		})
		defer app.Close()

		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		_, err = p.Run()
		return err
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if stack != nil {
			stack.Close()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a JSONC config file (default $XDG_CONFIG_HOME/pdflens/config.json)")
	flags.StringVar(&overrides.CacheDir, "cache-dir", "", "cache directory (default $XDG_CACHE_HOME/pdflens)")
	flags.IntVar(&overrides.DPI, "dpi", 0, fmt.Sprintf("render resolution (default %d)", config.DefaultDPI))
	flags.StringVar(&overrides.Display, "display", "", "image backend: auto, wezterm or chafa")
	flags.StringVar(&overrides.Fingerprint, "fingerprint", "", "document fingerprint: stat or content")
	flags.StringVar(&overrides.Snap, "snap", "", "page moves into another document land on: none or match")
	flags.IntVar(&overrides.Concurrency, "concurrency", 0, fmt.Sprintf("documents extracted in parallel (default %d)", config.DefaultConcurrency))
	flags.StringVar(&overrides.LogFile, "log-file", "", "write logs to this file")
	flags.BoolVar(&overrides.Debug, "debug", false, "enable debug logging")
	flags.BoolVarP(&regex, "regex", "e", false, "treat the query as a regular expression")
}

func searchRoot(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return "."
}
