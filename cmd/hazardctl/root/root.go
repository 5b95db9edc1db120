package root

import (
	"fmt"

	"github.com/couchcryptid/hazard-engine/cmd/hazardctl/artifact"
	"github.com/couchcryptid/hazard-engine/cmd/hazardctl/assess"
	"github.com/couchcryptid/hazard-engine/cmd/hazardctl/predict"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hazardctl",
	Short: "Score feature snapshots and inspect hazard model artifacts",
	Long: `hazardctl runs the hazard scoring engine outside the streaming service.

It scores a single feature snapshot for one hazard or for all of them, and
inspects the trained model artifacts the service loads from MODEL_DIR.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(predict.Cmd)
	rootCmd.AddCommand(assess.Cmd)
	rootCmd.AddCommand(artifact.Cmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate(fmt.Sprintf("hazardctl version %s\n", rootCmd.Version))
}
