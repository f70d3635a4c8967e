package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"TalentRadar/internal/app"
	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
	"TalentRadar/internal/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "talentradar",
		Short:         "Scan recent articles and podcasts for emerging talent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config (default $TALENT_RADAR_CONFIG)")

	root.AddCommand(
		newServeCmd(opts),
		newRunCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newStatusCmd(opts),
		newMCPCmd(opts),
	)
	return root
}

// bootstrap loads configuration and wires the application. stderrLogs moves
// logs off stdout for commands whose stdout is a protocol or JSON stream.
func bootstrap(ctx context.Context, opts *rootOptions, stderrLogs bool) (*app.Application, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if stderrLogs {
		logger = logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	}
	return app.New(ctx, cfg, logger)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the scheduler when enabled)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Serve(cmd.Context())
		},
	}
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one radar run and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer application.Close()

			result, err := application.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"newlyAddedCount": result.NewlyAdded,
				"attempted":       result.Attempted,
				"failed":          result.Failed,
				"added":           result.Added,
				"total":           len(result.Records),
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every registry record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer application.Close()

			records, err := application.Prospects().List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"records": records})
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		candidate domain.ProspectCandidate
		platforms []string
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a prospect by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer application.Close()

			candidate.Name = args[0]
			for _, p := range platforms {
				candidate.Platforms = append(candidate.Platforms, domain.Platform(p))
			}
			rec, err := application.Prospects().AddManual(cmd.Context(), candidate)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"record": rec})
		},
	}
	cmd.Flags().StringVar(&candidate.WhyFit, "why", "", "why the prospect fits")
	cmd.Flags().StringVar(&candidate.SourceReference, "source-article", "", "where the prospect was spotted")
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "platforms (Instagram, TikTok, YouTube, Film/TV, Music)")
	cmd.Flags().StringVar(&candidate.ReachEstimate, "reach", "", "audience size estimate")
	cmd.Flags().StringVar(&candidate.UpsideNotes, "notes", "", "upside notes")
	cmd.Flags().Float64Var(&candidate.MatchScore, "score", 0, "match score 1-10 (0 leaves it unset)")
	cmd.Flags().StringVar(&candidate.ProfileLink, "link", "", "profile URL")
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move a prospect to a new triage status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer application.Close()

			rec, err := application.Prospects().UpdateStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"record": rec})
		},
	}
}

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the radar tools over MCP stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.ServeMCP()
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
