// Package automation runs the unattended generate-and-publish loop. A
// Controller owns at most one background run at a time; callers start and
// stop runs and poll a status snapshot, they never block on the loop itself.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"quizcast/internal/archive"
	"quizcast/internal/content"
	"quizcast/internal/generate"
	"quizcast/internal/youtube"
)

var ErrAlreadyRunning = errors.New("automation already running")

const (
	defaultDelay = 5 * time.Second

	shortsQuestions   = 5
	longFormQuestions = 10

	nameTimeLayout = "20060102_150405"
)

// Uploader publishes a finished video and optionally its thumbnail.
type Uploader interface {
	Upload(ctx context.Context, video youtube.Video) (string, error)
	SetThumbnail(ctx context.Context, videoID string, image []byte) error
}

// Config describes the videos a run should produce. Zero values fall back
// to the generator's own defaults, except NumQuestions which is resolved
// here because titles and descriptions depend on it.
type Config struct {
	VideoType    string
	NumQuestions int
	QuestionTime int
	AnswerTime   int
	Shorts       bool
	Resolution   string
}

func (c *Config) applyDefaults() {
	if c.NumQuestions <= 0 {
		if c.Shorts {
			c.NumQuestions = shortsQuestions
		} else {
			c.NumQuestions = longFormQuestions
		}
	}
}

// Status is a point-in-time snapshot of the current or most recent run.
type Status struct {
	Running         bool   `json:"running"`
	VideosGenerated int    `json:"videos_generated"`
	VideosUploaded  int    `json:"videos_uploaded"`
	CurrentAction   string `json:"current_action"`
	LastError       string `json:"last_error,omitempty"`
}

type Controller struct {
	generator generate.Generator
	uploader  Uploader
	planner   content.Planner
	archiver  archive.Archiver
	delay     time.Duration

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

type ControllerOptions struct {
	Generator generate.Generator
	Uploader  Uploader
	Planner   content.Planner
	Archiver  archive.Archiver
	Delay     time.Duration
}

func NewController(opts ControllerOptions) *Controller {
	delay := opts.Delay
	if delay <= 0 {
		delay = defaultDelay
	}

	return &Controller{
		generator: opts.Generator,
		uploader:  opts.Uploader,
		planner:   opts.Planner,
		archiver:  opts.Archiver,
		delay:     delay,
	}
}

// Start launches a background run of the given length. It returns
// ErrAlreadyRunning while a previous run is still active; otherwise it
// resets the status counters and returns as soon as the loop is launched.
func (c *Controller) Start(cfg Config, iterations int) error {
	if iterations < 1 {
		return fmt.Errorf("iteration count must be at least 1, got %d", iterations)
	}
	cfg.applyDefaults()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.Running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.status = Status{Running: true}
	c.cancel = cancel
	c.done = done

	go c.run(ctx, cfg, iterations, done)

	slog.Info("Automation started", "iterations", iterations, "shorts", cfg.Shorts)
	return nil
}

// Stop clears the running flag and cancels the loop's context. In-flight
// generation and upload calls are not interrupted; the loop exits at its
// next checkpoint.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.status.Running {
		return
	}

	c.status.Running = false
	c.cancel()

	slog.Info("Automation stop requested")
}

// Status returns a copy of the shared status record.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Wait blocks until the current run's loop has exited. It returns
// immediately if no run was ever started.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (c *Controller) run(ctx context.Context, cfg Config, iterations int, done chan struct{}) {
	defer close(done)

	stopped := false
	for i := 1; i <= iterations; i++ {
		if ctx.Err() != nil {
			stopped = true
			break
		}

		c.setAction(fmt.Sprintf("Generating video %d/%d", i, iterations))

		result, err := c.generator.Generate(ctx, c.job(cfg))
		if err != nil {
			c.recordError(fmt.Sprintf("Generation failed: %v", err))
		} else {
			c.addGenerated()

			if ctx.Err() != nil {
				stopped = true
				break
			}

			c.setAction(fmt.Sprintf("Uploading video %d/%d", i, iterations))
			c.publish(ctx, cfg, i, iterations, result)
		}

		if i < iterations && !c.pause(ctx) {
			stopped = true
			break
		}
	}

	c.finish(stopped)
}

// publish plans metadata for one generated video, uploads it, and cleans
// up the local artifacts. Failures are recorded but never abort the run.
func (c *Controller) publish(ctx context.Context, cfg Config, iteration, total int, result generate.Result) {
	post, err := c.planner.Plan(iteration, total, content.Params{
		Questions: cfg.NumQuestions,
		Shorts:    cfg.Shorts,
	})
	if err != nil {
		c.recordError(fmt.Sprintf("Upload failed: %v", err))
		return
	}

	videoID, err := c.uploader.Upload(ctx, youtube.Video{
		Path:        result.VideoPath,
		Title:       post.Title,
		Description: post.Description,
		Tags:        post.Tags,
	})
	if err != nil {
		c.recordError(fmt.Sprintf("Upload failed: %v", err))
		return
	}

	c.addUploaded()
	slog.Info("Video uploaded", "url", youtube.WatchURL(videoID))

	if result.ThumbnailPath != "" {
		c.publishThumbnail(ctx, videoID, result.ThumbnailPath)
	}
	c.dispose(ctx, result.VideoPath)
}

// publishThumbnail sets the video's thumbnail on a best-effort basis. The
// thumbnail file is disposed of whether or not the upload succeeded.
func (c *Controller) publishThumbnail(ctx context.Context, videoID, path string) {
	defer c.dispose(ctx, path)

	image, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("Failed to read thumbnail", "path", path, "error", err)
		return
	}

	if err := c.uploader.SetThumbnail(ctx, videoID, image); err != nil {
		slog.Warn("Thumbnail upload failed", "video_id", videoID, "error", err)
		return
	}

	slog.Info("Thumbnail uploaded", "video_id", videoID)
}

func (c *Controller) job(cfg Config) generate.Job {
	prefix := "auto_quiz"
	videoType := cfg.VideoType
	if cfg.Shorts {
		prefix = "short"
		videoType = "shorts"
	}

	return generate.Job{
		VideoType:    videoType,
		NumQuestions: cfg.NumQuestions,
		QuestionTime: cfg.QuestionTime,
		AnswerTime:   cfg.AnswerTime,
		OutputName:   fmt.Sprintf("%s_%s", prefix, time.Now().Format(nameTimeLayout)),
		Shorts:       cfg.Shorts,
		Resolution:   cfg.Resolution,
	}
}

func (c *Controller) dispose(ctx context.Context, path string) {
	if c.archiver == nil {
		return
	}
	if err := c.archiver.Dispose(ctx, path); err != nil {
		slog.Warn("Failed to dispose of file", "path", path, "error", err)
	}
}

// pause waits out the inter-iteration delay. It reports false when the run
// was stopped while waiting.
func (c *Controller) pause(ctx context.Context) bool {
	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *Controller) finish(stopped bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.Running = false
	if stopped {
		c.status.CurrentAction = "Stopped"
	} else {
		c.status.CurrentAction = "Completed"
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	slog.Info("Automation finished", "action", c.status.CurrentAction,
		"generated", c.status.VideosGenerated, "uploaded", c.status.VideosUploaded)
}

func (c *Controller) setAction(action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.CurrentAction = action
}

func (c *Controller) recordError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.LastError = msg
	slog.Error("Automation iteration failed", "error", msg)
}

func (c *Controller) addGenerated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.VideosGenerated++
}

func (c *Controller) addUploaded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.VideosUploaded++
}
