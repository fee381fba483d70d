package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veriface/veriface/internal/config"
	"github.com/veriface/veriface/internal/store"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "Manage enrolled identities",
}

var identitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities",
	RunE:  runIdentitiesList,
}

var identitiesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an enrolled identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentitiesDelete,
}

var identitiesStatsCmd = &cobra.Command{
	Use:   "stats <name>",
	Short: "Show verification statistics for an identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentitiesStats,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesListCmd)
	identitiesCmd.AddCommand(identitiesDeleteCmd)
	identitiesCmd.AddCommand(identitiesStatsCmd)
}

func runIdentitiesList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	identities := eng.Store().List()
	if len(identities) == 0 {
		fmt.Println("No identities enrolled")
		return nil
	}

	fmt.Printf("%-24s %-14s %-8s %s\n", "NAME", "METHOD", "SAMPLES", "ENROLLED")
	for _, identity := range identities {
		fmt.Printf("%-24s %-14s %-8d %s\n",
			identity.Name,
			identity.Encoding.Method,
			identity.SampleCount,
			identity.EnrolledAt.Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func runIdentitiesStats(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Load()

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	identity, err := eng.Store().Get(name)
	if err != nil {
		if errors.Is(err, store.ErrUnknownIdentity) {
			return fmt.Errorf("identity %q is not enrolled", name)
		}
		return err
	}

	stats := eng.AuditLog().Stats(identity.Name)
	fmt.Printf("%s (enrolled %s, %d samples, %s)\n",
		identity.Name,
		identity.EnrolledAt.Format("2006-01-02 15:04"),
		identity.SampleCount,
		identity.Encoding.Method,
	)
	fmt.Printf("  Verifications: %d (%d ok, %d failed", stats.Total, stats.Successful, stats.Failed)
	if stats.Total > 0 {
		fmt.Printf(", %.0f%% success", stats.SuccessRate)
	}
	fmt.Println(")")
	if stats.LastSuccess != nil {
		fmt.Printf("  Last success: %s\n", stats.LastSuccess.Format("2006-01-02 15:04:05"))
	}
	if stats.LastFailure != nil {
		fmt.Printf("  Last failure: %s\n", stats.LastFailure.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runIdentitiesDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Load()

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := eng.Store().Delete(name); err != nil {
		if errors.Is(err, store.ErrUnknownIdentity) {
			return fmt.Errorf("identity %q is not enrolled", name)
		}
		return err
	}

	fmt.Printf("Deleted %s\n", name)
	return nil
}
