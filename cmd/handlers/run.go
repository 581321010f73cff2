package handlers

import (
	"dailynews/internal/config"
	"dailynews/internal/pipeline"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the daily pipeline command.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full daily aggregation pipeline",
		Long: `Run one daily cycle: fetch every registered source, sample
candidates by tier, evaluate them with the configured LLM provider,
apply scoring, dedup and diversity quotas, then write the markdown
digest and the per-source metrics report.

Examples:
  dailynews run
  dailynews run --config ./dailynews.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			p, err := pipeline.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return p.Run(cmd.Context())
		},
	}
}
