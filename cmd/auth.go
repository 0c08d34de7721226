package cmd

import (
	"errors"
	"fmt"

	"quizcast/internal/auth"
	"quizcast/internal/settings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	authInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	authSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	authErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Connect a YouTube account (OAuth)",
	Long: `Complete the YouTube OAuth flow in a browser. Tokens are stored in the
settings file; re-run to reconnect a different account.`,
	RunE: runAuthConnect,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the YouTube connection",
	RunE:  runAuthStatus,
}

var authDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Drop the stored YouTube tokens",
	Long:  `Remove the stored access and refresh tokens. Client credentials are kept.`,
	RunE:  runAuthDisconnect,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authDisconnectCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthConnect(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	return connectYouTube(app)
}

// connectYouTube drives one authorization attempt end to end and reports
// the outcome. Shared with the setup wizard.
func connectYouTube(app *app) error {
	if err := app.flow.Begin(); err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			fmt.Println(authErrorStyle.Render("✗ YouTube client credentials are not configured"))
			fmt.Println(authInfoStyle.Render("  Run: quizcast setup"))
		}
		return err
	}

	fmt.Println(authInfoStyle.Render("\nOpening browser for YouTube authorization..."))

	done := app.flow.Done()
	_ = spinner.New().
		Title("Waiting for the browser redirect...").
		Action(func() { <-done }).
		Run()

	switch app.flow.State() {
	case auth.StateAuthenticated:
		snap, err := settings.Snapshot(app.store)
		if err == nil && snap.ChannelName != "" {
			fmt.Println(authSuccessStyle.Render("✓ Connected to YouTube channel: " + snap.ChannelName))
		} else {
			fmt.Println(authSuccessStyle.Render("✓ Connected to YouTube"))
		}
		return nil
	case auth.StateTimedOut:
		return fmt.Errorf("authorization timed out after %s", app.cfg.Auth.Wait())
	default:
		return errors.New("authorization failed, check the logs and try again")
	}
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}

	snap, err := settings.Snapshot(app.store)
	if err != nil {
		return err
	}

	fmt.Println(authInfoStyle.Render("\nYouTube connection:"))

	switch {
	case snap.ClientID == "" || snap.ClientSecret == "":
		fmt.Println(authErrorStyle.Render("✗ Client credentials not configured"))
		fmt.Println(authInfoStyle.Render("  Run: quizcast setup"))
	case !snap.IsAuthenticated:
		fmt.Println(authErrorStyle.Render("✗ Credentials set, but no account connected"))
		fmt.Println(authInfoStyle.Render("  Run: quizcast auth"))
	case snap.ChannelName != "":
		fmt.Println(authSuccessStyle.Render("✓ Connected: " + snap.ChannelName))
	default:
		fmt.Println(authSuccessStyle.Render("✓ Connected"))
	}

	fmt.Println()
	return nil
}

func runAuthDisconnect(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}

	if err := app.flow.Disconnect(); err != nil {
		return err
	}

	fmt.Println(authSuccessStyle.Render("✓ Disconnected from YouTube (client credentials kept)"))
	return nil
}
