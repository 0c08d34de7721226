package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	scheduleCron     string
	scheduleShorts   int
	scheduleLongForm int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Publish batches of videos on a cron schedule",
	Long: `Run the automation on a cron schedule. Each firing produces a batch of
long-form videos followed by a batch of Shorts. A firing that lands while
the previous one is still running is skipped.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression (default from config)")
	scheduleCmd.Flags().IntVar(&scheduleShorts, "shorts", 0, "Shorts per firing (default from config)")
	scheduleCmd.Flags().IntVar(&scheduleLongForm, "long-form", 0, "Long-form videos per firing (default from config)")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleQuit = make(chan struct{})

func runSchedule(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}

	spec := scheduleCron
	if spec == "" {
		spec = app.cfg.Schedule.Cron
	}
	longForm := scheduleLongForm
	if !cmd.Flags().Changed("long-form") {
		longForm = app.cfg.Schedule.LongForm
	}
	shorts := scheduleShorts
	if !cmd.Flags().Changed("shorts") {
		shorts = app.cfg.Schedule.Shorts
	}

	// Skip a firing that lands while the previous batch is still running.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() {
		runScheduledBatches(app, longForm, shorts)
	}); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	slog.Info("Scheduler started",
		"cron", spec,
		"long_form", longForm,
		"shorts", shorts,
	)
	c.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down scheduler...")
	close(scheduleQuit)
	stopCtx := c.Stop()
	app.controller.Stop()
	<-stopCtx.Done()
	return nil
}

func runScheduledBatches(app *app, longForm, shorts int) {
	batches := []struct {
		count  int
		shorts bool
	}{
		{longForm, false},
		{shorts, true},
	}

	ran := false
	for _, batch := range batches {
		if batch.count == 0 {
			continue
		}
		select {
		case <-scheduleQuit:
			return
		default:
		}
		if ran {
			time.Sleep(app.cfg.Schedule.Delay())
		}
		ran = true

		cfg := automationConfig(app.cfg)
		cfg.Shorts = batch.shorts

		if err := app.controller.Start(cfg, batch.count); err != nil {
			slog.Error("Scheduled batch did not start", "error", err)
			continue
		}
		app.controller.Wait()

		if status := app.controller.Status(); status.LastError != "" {
			slog.Warn("Scheduled batch finished with errors", "last_error", status.LastError)
		}
	}
}
