package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/pipeline"
)

var (
	runTop      int
	runFormat   string
	runSkipGate bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the refined prospecting pipeline",
	Long:  "Discovers companies across the tiered city list, filters noise, runs the LLM pre-check and evaluation, ranks by fit, verifies websites for the top candidates, scores against the website-required profile, and exports the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if runFormat != "" {
			cfg.Output.Format = runFormat
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.RunRefined(ctx, pipeline.Options{
			TopN:            runTop,
			SkipWebsiteGate: runSkipGate,
		})
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("pipeline complete",
			zap.Int("discovered", result.Discovered),
			zap.Int("exported", result.Exported),
			zap.String("output_file", result.OutputFile),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().IntVar(&runTop, "top", 0, "number of ranked candidates to carry through the website gate (default 20)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format: csv or xlsx (overrides config)")
	runCmd.Flags().BoolVar(&runSkipGate, "skip-website-gate", false, "skip the website requirement filter")
	rootCmd.AddCommand(runCmd)
}
