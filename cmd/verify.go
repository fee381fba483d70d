package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veriface/veriface/internal/config"
	"github.com/veriface/veriface/internal/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <name>",
	Short: "Verify a live face against an enrolled identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Int("attempts", 0, "Capture attempts (0 uses the configured default)")
	verifyCmd.Flags().Float64("threshold", 0, "Override the verification threshold for this run")
}

func runVerify(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Load()

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if threshold := mustGetFloat64(cmd, "threshold"); threshold != 0 {
		if err := eng.SetThreshold(threshold); err != nil {
			return fmt.Errorf("invalid threshold %.2f: %w", threshold, err)
		}
	}

	result, err := eng.Verify(cmd.Context(), name, mustGetInt(cmd, "attempts"))
	if err != nil {
		if errors.Is(err, store.ErrUnknownIdentity) {
			return fmt.Errorf("identity %q is not enrolled", name)
		}
		return err
	}

	if result.Verified {
		fmt.Printf("VERIFIED %s (distance %.4f, threshold %.2f, attempt %d)\n",
			result.Name, result.BestDistance, result.Threshold, result.Attempts)
		return nil
	}

	if result.HasDistance() {
		fmt.Printf("REJECTED %s (best distance %.4f, threshold %.2f, %d attempts)\n",
			result.Name, result.BestDistance, result.Threshold, result.Attempts)
	} else {
		fmt.Printf("REJECTED %s (no comparable face seen in %d attempts)\n",
			result.Name, result.Attempts)
	}
	return errors.New("verification failed")
}
