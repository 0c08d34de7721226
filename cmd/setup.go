package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"quizcast/internal/settings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

const configPath = "config.yaml"

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Quizcast",
	Long:  `Configure defaults and YouTube OAuth credentials, create directories, and connect an account.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("📺 Quizcast Setup"))

	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}

	outputDir := app.cfg.Generator.OutputDir

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Configuring defaults", func() error { return configureDefaults(app, &outputDir) }},
		{"Creating directories", func() error { return createDirectories(outputDir) }},
		{"Configuring YouTube credentials", func() error { return configureCredentials(app) }},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	printNextSteps()
	return nil
}

func configureDefaults(app *app, outputDir *string) error {
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing config.yaml").
			Description("Rewrite it with new defaults?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing config.yaml"))
			return nil
		}
	}

	count := strconv.Itoa(app.cfg.Automation.Count)
	shorts := app.cfg.Automation.Shorts

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Description("Where generated videos are stored").
				Value(outputDir).
				Validate(required("Output directory")),
			huh.NewInput().
				Title("Videos per run").
				Value(&count).
				Validate(positiveNumber("Videos per run")),
			huh.NewConfirm().
				Title("Produce vertical Shorts by default?").
				Value(&shorts),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	*outputDir = strings.TrimSpace(*outputDir)
	n, _ := strconv.Atoi(strings.TrimSpace(count))

	return writeConfigFile(*outputDir, n, shorts)
}

func writeConfigFile(outputDir string, count int, shorts bool) error {
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintf(f, "generator:\n  output_dir: %s\n\n", outputDir)
	_, _ = fmt.Fprintf(f, "automation:\n  count: %d\n  shorts: %v\n", count, shorts)

	fmt.Println(successStyle.Render("✓ Created config.yaml"))
	return nil
}

func createDirectories(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", outputDir, err)
	}
	fmt.Println(successStyle.Render("✓ Created directories"))
	return nil
}

func configureCredentials(app *app) error {
	snap, err := settings.Snapshot(app.store)
	if err != nil {
		return err
	}

	if snap.ClientID != "" && snap.ClientSecret != "" {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing client credentials").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing credentials"))
			return offerAuthentication(app)
		}
	}

	fmt.Println(infoStyle.Render(`
To create OAuth credentials:
1. Go to https://console.cloud.google.com/apis/credentials
2. Click "Create Credentials" → "OAuth client ID"
3. Choose "Desktop app" as application type
4. Copy the Client ID and Client Secret
`))

	var clientID, clientSecret string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("YouTube Client ID").
				Value(&clientID).
				Validate(required("Client ID")),
			huh.NewInput().
				Title("YouTube Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&clientSecret).
				Validate(required("Client Secret")),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)

	if err := settings.SaveClient(app.store, clientID, clientSecret); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ Saved client credentials"))

	return offerAuthentication(app)
}

func offerAuthentication(app *app) error {
	var authenticate bool
	if err := huh.NewConfirm().
		Title("Connect a YouTube account now?").
		Description("Opens a browser to complete the OAuth flow").
		Value(&authenticate).
		Run(); err != nil {
		return err
	}

	if !authenticate {
		return nil
	}

	if err := connectYouTube(app); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("OAuth flow failed: %v", err)))
		fmt.Println(infoStyle.Render("You can retry later with: quizcast auth"))
	}
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Point generator.command in config.yaml at your video generator")
	fmt.Println("  2. Try a single run: quizcast run --count 1")
	fmt.Println("  3. Schedule unattended runs: quizcast schedule")
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func positiveNumber(field string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 1 {
			return fmt.Errorf("%s must be a positive number", field)
		}
		return nil
	}
}
