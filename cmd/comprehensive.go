package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var comprehensiveFormat string

var comprehensiveCmd = &cobra.Command{
	Use:   "comprehensive",
	Short: "Run the comprehensive (legacy) prospecting sweep",
	Long:  "Sweeps the full city and keyword matrix, filters noise, admits candidates through the legacy ICP score gate, runs the LLM evaluation on every survivor, and exports the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if comprehensiveFormat != "" {
			cfg.Output.Format = comprehensiveFormat
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.RunComprehensive(ctx)
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
	comprehensiveCmd.Flags().StringVar(&comprehensiveFormat, "format", "", "output format: csv or xlsx (overrides config)")
	rootCmd.AddCommand(comprehensiveCmd)
}
