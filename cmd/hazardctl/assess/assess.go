package assess

import (
	"fmt"

	"github.com/couchcryptid/hazard-engine/cmd/hazardctl/cliutil"
	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/couchcryptid/hazard-engine/internal/hazard"
	"github.com/spf13/cobra"
)

var (
	hazardList   string
	featuresPath string
	modelDir     string
	fallback     bool
	verbose      bool
)

var Cmd = &cobra.Command{
	Use:   "assess",
	Short: "Run a multi-hazard assessment on one feature snapshot",
	Long: `Score a feature snapshot for several hazards and print the combined
assessment, including the overall weighted risk score, risk level, priority
hazards and merged recommendations.

Hazards named in the snapshot's "hazards" field take precedence over
--hazards.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runAssess,
}

func init() {
	Cmd.Flags().StringVar(&hazardList, "hazards", "wildfire,flood,landslide", "Comma-separated hazards to configure")
	Cmd.Flags().StringVarP(&featuresPath, "features", "f", "", "Path to a JSON feature snapshot (default: stdin)")
	Cmd.Flags().StringVar(&modelDir, "model-dir", "models", "Directory holding <hazard>_model.msgpack artifacts")
	Cmd.Flags().BoolVar(&fallback, "fallback", false, "Ignore model artifacts and use the fallback rules")
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log predictor setup to stderr")
}

func runAssess(cmd *cobra.Command, _ []string) error {
	hazards, err := domain.ParseHazardList(hazardList)
	if err != nil {
		return err
	}
	snap, err := cliutil.ReadSnapshot(featuresPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	logger := cliutil.Logger(cmd.ErrOrStderr(), verbose)
	reg, err := cliutil.LoadRegistry(cmd.Context(), hazards, modelDir, fallback, logger)
	if err != nil {
		return fmt.Errorf("load predictors: %w", err)
	}

	return cliutil.WriteJSON(cmd.OutOrStdout(), hazard.NewAssessor(reg, logger).Assess(snap))
}
