package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizcast/internal/automation"

	"github.com/spf13/cobra"
)

var (
	runCount        int
	runType         string
	runQuestions    int
	runQuestionTime int
	runAnswerTime   int
	runShorts       bool
	runResolution   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate and upload a batch of videos",
	Long: `Run the automation loop in the foreground: generate a video, upload it,
repeat for the requested count. Ctrl+C stops after the current step.`,
	RunE: runAutomation,
}

func init() {
	runCmd.Flags().IntVarP(&runCount, "count", "c", 0, "Number of videos to produce (default from config)")
	runCmd.Flags().StringVarP(&runType, "type", "t", "", "Video type passed to the generator")
	runCmd.Flags().IntVarP(&runQuestions, "questions", "q", 0, "Questions per video")
	runCmd.Flags().IntVar(&runQuestionTime, "question-time", 0, "Seconds each question stays on screen")
	runCmd.Flags().IntVar(&runAnswerTime, "answer-time", 0, "Seconds each answer stays on screen")
	runCmd.Flags().BoolVarP(&runShorts, "shorts", "s", false, "Produce vertical Shorts")
	runCmd.Flags().StringVar(&runResolution, "resolution", "", "Output resolution override")
	rootCmd.AddCommand(runCmd)
}

func runAutomation(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}

	cfg := automationConfig(app.cfg)
	if runType != "" {
		cfg.VideoType = runType
	}
	if runQuestions > 0 {
		cfg.NumQuestions = runQuestions
	}
	if runQuestionTime > 0 {
		cfg.QuestionTime = runQuestionTime
	}
	if runAnswerTime > 0 {
		cfg.AnswerTime = runAnswerTime
	}
	if cmd.Flags().Changed("shorts") {
		cfg.Shorts = runShorts
	}
	if runResolution != "" {
		cfg.Resolution = runResolution
	}

	count := runCount
	if count == 0 {
		count = app.cfg.Automation.Count
	}

	if err := app.controller.Start(cfg, count); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		app.controller.Wait()
		close(done)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastAction string
	for {
		select {
		case <-sigChan:
			slog.Info("Stop requested, finishing the current step...")
			app.controller.Stop()
		case <-done:
			return reportRun(app.controller.Status())
		case <-ticker.C:
			status := app.controller.Status()
			if status.CurrentAction != lastAction {
				slog.Info(status.CurrentAction,
					"generated", status.VideosGenerated,
					"uploaded", status.VideosUploaded)
				lastAction = status.CurrentAction
			}
		}
	}
}

func reportRun(status automation.Status) error {
	fmt.Println()
	fmt.Println(successStyle.Render(fmt.Sprintf("%s: %d generated, %d uploaded",
		status.CurrentAction, status.VideosGenerated, status.VideosUploaded)))

	if status.LastError != "" {
		return fmt.Errorf("run recorded errors, last: %s", status.LastError)
	}
	return nil
}
