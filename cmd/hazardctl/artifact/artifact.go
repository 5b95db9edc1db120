package artifact

import (
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/hazard-engine/cmd/hazardctl/cliutil"
	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/couchcryptid/hazard-engine/internal/hazard"
	"github.com/spf13/cobra"
)

var (
	topK       int
	schemaName string
)

var Cmd = &cobra.Command{
	Use:          "artifact",
	Short:        "Inspect trained model artifacts",
	SilenceUsage: true,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Validate an artifact and summarize its contents",
	Long: `Decode a MessagePack model artifact, validate its structure, and check
that its feature order matches the engine's schema for the artifact's hazard.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runInspect,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the feature order a hazard's artifact must be trained on",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSchema,
}

func init() {
	inspectCmd.Flags().IntVar(&topK, "top", 5, "Number of most important features to list")
	schemaCmd.Flags().StringVar(&schemaName, "hazard", "", "Hazard whose schema to print")
	_ = schemaCmd.MarkFlagRequired("hazard")

	Cmd.AddCommand(inspectCmd)
	Cmd.AddCommand(schemaCmd)
}

// Summary describes a decoded artifact.
type Summary struct {
	Path          string            `json:"path"`
	Hazard        domain.HazardType `json:"hazard"`
	Version       int               `json:"version"`
	TrainedAt     time.Time         `json:"trained_at"`
	Features      int               `json:"features"`
	Primary       RegressorSummary  `json:"primary"`
	Secondary     RegressorSummary  `json:"secondary"`
	TopFeatures   []string          `json:"top_features"`
	SchemaMatches bool              `json:"schema_matches"`
	SchemaError   string            `json:"schema_error,omitempty"`
}

// RegressorSummary describes one ensemble inside an artifact.
type RegressorSummary struct {
	Kind  hazard.EnsembleKind `json:"kind"`
	Trees int                 `json:"trees"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	if topK < 0 {
		return fmt.Errorf("--top must not be negative, got %d", topK)
	}
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	a, err := hazard.DecodeArtifact(f)
	if err != nil {
		return err
	}

	sum := Summary{
		Path:      path,
		Hazard:    a.Hazard,
		Version:   a.Version,
		TrainedAt: a.TrainedAt,
		Features:  len(a.FeatureNames),
		Primary:   RegressorSummary{Kind: a.Primary.Kind, Trees: len(a.Primary.Trees)},
		Secondary: RegressorSummary{Kind: a.Secondary.Kind, Trees: len(a.Secondary.Trees)},
	}
	if len(a.Primary.Importances) > 0 {
		for _, i := range a.TopFeatures(topK) {
			sum.TopFeatures = append(sum.TopFeatures, a.FeatureNames[i])
		}
	}

	profile, err := hazard.ProfileFor(a.Hazard)
	if err != nil {
		sum.SchemaError = err.Error()
	} else if err := a.CheckSchema(profile.Schema); err != nil {
		sum.SchemaError = err.Error()
	} else {
		sum.SchemaMatches = true
	}

	if err := cliutil.WriteJSON(cmd.OutOrStdout(), sum); err != nil {
		return err
	}
	if !sum.SchemaMatches {
		return fmt.Errorf("artifact does not match the %s schema", a.Hazard)
	}
	return nil
}

func runSchema(cmd *cobra.Command, _ []string) error {
	h, err := domain.ParseHazardType(schemaName)
	if err != nil {
		return err
	}
	profile, err := hazard.ProfileFor(h)
	if err != nil {
		return err
	}
	return cliutil.WriteJSON(cmd.OutOrStdout(), map[string]any{
		"hazard":        h,
		"version":       hazard.ArtifactVersion,
		"feature_names": profile.Schema.Features,
	})
}
