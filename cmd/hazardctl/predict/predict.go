package predict

import (
	"fmt"

	"github.com/couchcryptid/hazard-engine/cmd/hazardctl/cliutil"
	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/spf13/cobra"
)

var (
	hazardName   string
	featuresPath string
	modelDir     string
	fallback     bool
	verbose      bool
)

var Cmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one feature snapshot for a single hazard",
	Long: `Score a feature snapshot for one hazard and print the prediction as JSON.

Features are read from --features, or from stdin when it is omitted. The
input may be a full snapshot ({"aoi_id": ..., "features": {...}}) or a bare
map of feature values. When no artifact is found in --model-dir the
rule-based fallback scores the snapshot.`,
	Example: `  echo '{"temperature": 35, "humidity": 10}' | hazardctl predict --hazard wildfire`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runPredict,
}

func init() {
	Cmd.Flags().StringVar(&hazardName, "hazard", "", "Hazard to score: wildfire, flood or landslide")
	Cmd.Flags().StringVarP(&featuresPath, "features", "f", "", "Path to a JSON feature snapshot (default: stdin)")
	Cmd.Flags().StringVar(&modelDir, "model-dir", "models", "Directory holding <hazard>_model.msgpack artifacts")
	Cmd.Flags().BoolVar(&fallback, "fallback", false, "Ignore model artifacts and use the fallback rules")
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log predictor setup to stderr")
	_ = Cmd.MarkFlagRequired("hazard")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	h, err := domain.ParseHazardType(hazardName)
	if err != nil {
		return err
	}
	snap, err := cliutil.ReadSnapshot(featuresPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	logger := cliutil.Logger(cmd.ErrOrStderr(), verbose)
	reg, err := cliutil.LoadRegistry(cmd.Context(), []domain.HazardType{h}, modelDir, fallback, logger)
	if err != nil {
		return fmt.Errorf("load predictor: %w", err)
	}
	p, _ := reg.Predictor(h)

	return cliutil.WriteJSON(cmd.OutOrStdout(), p.Predict(snap.Features))
}
