package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"quizcast/internal/library"
	"quizcast/internal/youtube"

	"github.com/spf13/cobra"
)

var (
	uploadTitle       string
	uploadDescription string
	uploadTags        []string
	uploadPrivacy     string
)

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Manage rendered videos",
	Long:  `List, delete, or manually upload videos from the output directory.`,
	RunE:  runVideosList,
}

var videosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rendered videos",
	RunE:  runVideosList,
}

var videosDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a rendered video",
	Args:  cobra.ExactArgs(1),
	RunE:  runVideosDelete,
}

var videosUploadCmd = &cobra.Command{
	Use:   "upload <name>",
	Short: "Upload a rendered video to YouTube",
	Args:  cobra.ExactArgs(1),
	RunE:  runVideosUpload,
}

func init() {
	videosUploadCmd.Flags().StringVar(&uploadTitle, "title", "", "Video title")
	videosUploadCmd.Flags().StringVar(&uploadDescription, "description", "", "Video description")
	videosUploadCmd.Flags().StringSliceVar(&uploadTags, "tags", nil, "Video tags")
	videosUploadCmd.Flags().StringVar(&uploadPrivacy, "privacy", "", "Privacy status (public, unlisted, private)")
	videosCmd.AddCommand(videosListCmd, videosDeleteCmd, videosUploadCmd)
	rootCmd.AddCommand(videosCmd)
}

func runVideosList(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}

	items, err := app.library.List()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Printf("No videos in %s yet. Generate some with: quizcast run\n", app.cfg.Generator.OutputDir)
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Videos in %s", app.cfg.Generator.OutputDir)))
	for _, item := range items {
		fmt.Printf("  %-44s %10s  %s\n",
			item.Name,
			library.FormatSize(item.Size),
			item.ModTime.Format("2006-01-02 15:04"))
	}
	return nil
}

func runVideosDelete(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}

	if err := app.library.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runVideosUpload(cmd *cobra.Command, args []string) error {
	if uploadTitle == "" {
		return errors.New("please provide --title")
	}

	name := args[0]
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid video name %q", name)
	}

	ctx := cmd.Context()

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}

	path := app.library.Path(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("video not found: %s", path)
	}

	slog.Info("Uploading to YouTube...", "video", name)
	videoID, err := app.uploader.Upload(ctx, youtube.Video{
		Path:        path,
		Title:       uploadTitle,
		Description: uploadDescription,
		Tags:        uploadTags,
		Privacy:     uploadPrivacy,
	})
	if err != nil {
		return err
	}

	// The generator drops a matching thumbnail next to each video.
	thumbPath := strings.TrimSuffix(path, filepath.Ext(path)) + "_thumb.jpg"
	if thumb, err := os.ReadFile(thumbPath); err == nil {
		if err := app.uploader.SetThumbnail(ctx, videoID, thumb); err != nil {
			slog.Warn("Thumbnail upload failed", "error", err)
		}
	}

	fmt.Println(successStyle.Render("Uploaded: " + youtube.WatchURL(videoID)))
	return nil
}
