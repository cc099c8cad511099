// Package main is the entry point for the protokoll binary, the team's
// standup/workshop minutes tool: it generates Word documents, reads them
// back, and publishes them to the team's documentation repository.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/boilerroom/sidestep/internal/minutes"
	"github.com/boilerroom/sidestep/internal/publish"
	"github.com/boilerroom/sidestep/pkg/logging"
)

// errDocumentExists indicates the planned output file already exists and
// --force was not given.
var errDocumentExists = errors.New("document already exists")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "protokoll",
		Short: "Standup/workshop minutes as Word documents",
		Long: `Generates standup/workshop minutes as .docx files, reads existing
documents back, and publishes them to the team's documentation repository.

Example:
  protokoll generate --team "Boiler Room" --worked "CI-pipeline" --next "Demo på fredag"`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			slog.SetDefault(logging.NewLogger(logging.Config{
				Level:  level,
				Pretty: true, // CLI output
			}))
		},
	}

	rootCmd.PersistentFlags().StringP("settings", "s", minutes.SettingsFilename, "Path to settings file")
	rootCmd.PersistentFlags().StringP("log-level", "l", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newPublishCmd())

	return rootCmd
}

// minutesInput is the YAML form accepted by generate --input.
type minutesInput struct {
	Team         string   `yaml:"team"`
	Date         string   `yaml:"date"`
	Participants string   `yaml:"participants"`
	Worked       []string `yaml:"worked"`
	Obstacles    []string `yaml:"obstacles"`
	Status       string   `yaml:"status"`
	NextSteps    []string `yaml:"next_steps"`
}

func loadInput(path string) (minutesInput, error) {
	var input minutesInput
	data, err := os.ReadFile(path)
	if err != nil {
		return input, fmt.Errorf("read input file: %w", err)
	}
	if err := yaml.Unmarshal(data, &input); err != nil {
		return input, fmt.Errorf("parse input file: %w", err)
	}
	return input, nil
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a minutes document",
		RunE:  runGenerate,
	}

	cmd.Flags().String("team", "", "Team name (defaults to the last used team)")
	cmd.Flags().String("date", "", "Date in YYYY-MM-DD format (defaults to today)")
	cmd.Flags().String("participants", "", "Comma-separated participant list")
	cmd.Flags().String("status", "", "Status: on-track, slightly-behind, or needs-help")
	cmd.Flags().StringArray("worked", nil, "What we worked on (repeatable)")
	cmd.Flags().StringArray("obstacle", nil, "Obstacles we hit (repeatable)")
	cmd.Flags().StringArray("next", nil, "Next steps (repeatable)")
	cmd.Flags().StringP("input", "f", "", "YAML file with the minutes content")
	cmd.Flags().StringP("output", "o", "", "Output directory (overrides settings)")
	cmd.Flags().Bool("force", false, "Overwrite an existing document")

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	settingsPath, _ := cmd.Flags().GetString("settings")
	settings := minutes.LoadSettings(settingsPath)

	var input minutesInput
	if inputPath, _ := cmd.Flags().GetString("input"); inputPath != "" {
		var err error
		if input, err = loadInput(inputPath); err != nil {
			return err
		}
	}

	m := buildMinutes(cmd, input, settings)
	if err := m.Validate(); err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = settings.OutputDir
	}
	outputDir = minutes.ExpandUser(outputDir)

	path := minutes.PlannedPath(outputDir, m.Team, m.Date)

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s (use --force to update it, or 'protokoll show' to inspect it)", errDocumentExists, path)
	}

	if err := minutes.WriteFile(m, path); err != nil {
		return err
	}

	// Persist the team for next time. Best effort: a read-only settings
	// location should not fail the generation.
	settings.LastTeam = m.Team
	settings.OutputDir = outputDir
	if err := minutes.SaveSettings(settingsPath, settings); err != nil {
		slog.Warn("Could not save settings", "path", settingsPath, "error", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// buildMinutes merges the input file, flags, and settings defaults. Flags
// win over the input file; the input file wins over defaults.
func buildMinutes(cmd *cobra.Command, input minutesInput, settings minutes.Settings) minutes.Minutes {
	m := minutes.Minutes{
		Team:         input.Team,
		Date:         input.Date,
		Participants: input.Participants,
		Worked:       input.Worked,
		Obstacles:    input.Obstacles,
		Status:       minutes.ParseStatus(input.Status),
		NextSteps:    input.NextSteps,
	}

	if v, _ := cmd.Flags().GetString("team"); v != "" {
		m.Team = v
	}
	if v, _ := cmd.Flags().GetString("date"); v != "" {
		m.Date = v
	}
	if v, _ := cmd.Flags().GetString("participants"); v != "" {
		m.Participants = v
	}
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		m.Status = minutes.ParseStatus(v)
	}
	if v, _ := cmd.Flags().GetStringArray("worked"); len(v) > 0 {
		m.Worked = v
	}
	if v, _ := cmd.Flags().GetStringArray("obstacle"); len(v) > 0 {
		m.Obstacles = v
	}
	if v, _ := cmd.Flags().GetStringArray("next"); len(v) > 0 {
		m.NextSteps = v
	}

	if m.Team == "" {
		m.Team = settings.LastTeam
	}
	if m.Date == "" {
		m.Date = time.Now().Format(minutes.DateFormat)
	}

	return m
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file.docx>",
		Short: "Print the contents of a minutes document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := minutes.ReadFile(args[0])
			if err != nil {
				return err
			}
			printMinutes(cmd, m)
			return nil
		},
	}
}

func printMinutes(cmd *cobra.Command, m minutes.Minutes) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Team:      %s\n", m.Team)
	fmt.Fprintf(out, "Datum:     %s\n", m.Date)
	fmt.Fprintf(out, "Deltagare: %s\n", m.Participants)
	fmt.Fprintf(out, "Status:    %s\n", m.Status.Label())

	printSection := func(heading string, items []string) {
		fmt.Fprintf(out, "\n%s\n", heading)
		for _, item := range items {
			fmt.Fprintf(out, "  - %s\n", item)
		}
	}
	printSection("Vad vi jobbade med:", m.Worked)
	printSection("Hinder vi stötte på:", m.Obstacles)
	printSection("Nästa steg:", m.NextSteps)
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [file.docx]",
		Short: "Commit and push a minutes document to the team repository",
		Long: `Copies the document into the configured repository checkout, commits,
and pushes. Without an argument, publishes today's document for the last
used team.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settingsPath, _ := cmd.Flags().GetString("settings")
			settings := minutes.LoadSettings(settingsPath)

			docPath := ""
			if len(args) > 0 {
				docPath = args[0]
			} else {
				outputDir := minutes.ExpandUser(settings.OutputDir)
				docPath = minutes.PlannedPath(outputDir, settings.LastTeam, time.Now().Format(minutes.DateFormat))
			}
			if _, err := os.Stat(docPath); err != nil {
				return fmt.Errorf("no document to publish: %w (generate it first)", err)
			}

			branch, _ := cmd.Flags().GetString("branch")

			publisher := publish.NewPublisher(settings.GitHub, slog.Default())
			target, err := publisher.Publish(cmd.Context(), docPath, branch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}

	cmd.Flags().StringP("branch", "b", "", "Branch to commit to (defaults to the configured default branch)")

	return cmd
}
