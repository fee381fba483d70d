package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/veriface/veriface/internal/config"
	"github.com/veriface/veriface/internal/engine"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <name>",
	Short: "Enroll a new identity from the camera",
	Long: `Collect face samples from the camera and enroll a new identity.
The command blocks until enough samples are collected, the enrollment
times out, or it is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Load()

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	taskID, err := eng.StartEnrollment(name)
	if err != nil {
		return fmt.Errorf("failed to start enrollment: %w", err)
	}

	required := cfg.Tuning.RequiredSamples
	bar := progressbar.NewOptions(required,
		progressbar.OptionSetDescription(fmt.Sprintf("Enrolling %s", name)),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("samples"),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	// Track progress while the engine collects samples.
	done := make(chan struct{})
	go func() {
		defer close(done)
		last := 0
		for {
			view, ok := eng.EnrollmentStatus(taskID)
			if !ok || view.Status.Terminal() {
				return
			}
			if view.Collected > last {
				_ = bar.Add(view.Collected - last)
				last = view.Collected
			}
			time.Sleep(100 * time.Millisecond)
		}
	}()

	view, err := eng.AwaitEnrollment(cmd.Context(), taskID)
	<-done

	switch {
	case errors.Is(err, engine.ErrTimeout):
		fmt.Printf("\nEnrollment timed out: %s\n", view.Error)
		return errors.New("enrollment failed")
	case err != nil:
		return err
	case view.Status != engine.JobStatusCommitted:
		fmt.Printf("\nEnrollment %s: %s\n", view.Status, view.Error)
		return errors.New("enrollment failed")
	}

	_ = bar.Finish()
	fmt.Printf("\nEnrolled %s from %d samples\n", view.Name, view.Collected)
	return nil
}
