// Package generate is the boundary to the rendering engine. The engine
// itself lives outside this process; everything here only describes a job
// and hands it over.
package generate

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Job is one video to produce.
type Job struct {
	VideoType    string
	NumQuestions int
	QuestionTime int
	AnswerTime   int
	OutputName   string
	Shorts       bool
	Resolution   string
}

// Result reports where the generator left its artifacts. ThumbnailPath is
// empty when no thumbnail was produced.
type Result struct {
	VideoPath     string
	ThumbnailPath string
}

// Generator produces one video file per call.
type Generator interface {
	Generate(ctx context.Context, job Job) (Result, error)
}

// ExecGenerator runs an external generator command, passing the job as
// flags. The command is expected to write the video at the requested output
// path and, optionally, a "<name>_thumb.jpg" next to it.
type ExecGenerator struct {
	Command   string
	OutputDir string
	ExtraArgs []string
}

func NewExecGenerator(command, outputDir string, extraArgs ...string) *ExecGenerator {
	return &ExecGenerator{
		Command:   command,
		OutputDir: outputDir,
		ExtraArgs: extraArgs,
	}
}

func (g *ExecGenerator) Generate(ctx context.Context, job Job) (Result, error) {
	if g.Command == "" {
		return Result{}, fmt.Errorf("no generator command configured")
	}
	if err := os.MkdirAll(g.OutputDir, 0755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}

	name := job.OutputName
	if !strings.HasSuffix(name, ".mp4") {
		name += ".mp4"
	}
	outputPath := filepath.Join(g.OutputDir, name)

	args := append([]string{}, g.ExtraArgs...)
	args = append(args,
		"--type", job.VideoType,
		"--questions", strconv.Itoa(job.NumQuestions),
		"--question-time", strconv.Itoa(job.QuestionTime),
		"--answer-time", strconv.Itoa(job.AnswerTime),
		"--output", outputPath,
	)
	if job.Resolution != "" {
		args = append(args, "--resolution", job.Resolution)
	}
	if job.Shorts {
		args = append(args, "--shorts")
	}

	cmd := exec.CommandContext(ctx, g.Command, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return Result{}, fmt.Errorf("generator failed: %w, output: %s", err, tail(output))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return Result{}, fmt.Errorf("generator produced no output file: %w", err)
	}

	result := Result{VideoPath: outputPath}
	thumbPath := strings.TrimSuffix(outputPath, ".mp4") + "_thumb.jpg"
	if _, err := os.Stat(thumbPath); err == nil {
		result.ThumbnailPath = thumbPath
	}
	return result, nil
}

// tail keeps error messages readable when the generator dumps a long log.
func tail(output []byte) string {
	const keep = 500
	s := strings.TrimSpace(string(output))
	if len(s) <= keep {
		return s
	}
	return "..." + s[len(s)-keep:]
}
