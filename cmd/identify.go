package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veriface/veriface/internal/config"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Rank enrolled identities against a live face",
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Int("limit", 5, "Maximum number of candidates to list")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := eng.Identify(cmd.Context(), mustGetInt(cmd, "limit"))
	if err != nil {
		return err
	}

	if !result.FaceFound {
		fmt.Println("No face detected")
		return nil
	}
	if len(result.Matches) == 0 {
		fmt.Printf("Face detected (%s) but no comparable identities enrolled\n", result.Method)
		return nil
	}

	fmt.Printf("Nearest identities (%s):\n", result.Method)
	for i, match := range result.Matches {
		fmt.Printf("  %d. %-20s distance %.4f\n", i+1, match.Name, match.Distance)
	}
	return nil
}
