package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boilerroom/sidestep/internal/minutes"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerate_WritesDocumentAndRemembersTeam(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.json")
	outDir := filepath.Join(dir, "out")

	out, err := runCLI(
		t,
		"generate",
		"--settings", settingsPath,
		"--output", outDir,
		"--team", "Boiler Room",
		"--date", "2026-01-20",
		"--participants", "Anna, Björn",
		"--status", "slightly-behind",
		"--worked", "CI-pipeline",
		"--worked", "Hälsokontroller",
		"--next", "Demo på fredag",
	)
	require.NoError(t, err)

	path := filepath.Join(outDir, "protokoll_Boiler_Room_2026-01-20.docx")
	assert.Contains(t, out, path)
	require.FileExists(t, path)

	m, err := minutes.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Boiler Room", m.Team)
	assert.Equal(t, minutes.StatusSlightlyBehind, m.Status)
	assert.Equal(t, []string{"CI-pipeline", "Hälsokontroller"}, m.Worked)

	settings := minutes.LoadSettings(settingsPath)
	assert.Equal(t, "Boiler Room", settings.LastTeam)
}

func TestGenerate_RefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.json")
	outDir := filepath.Join(dir, "out")

	args := []string{
		"generate",
		"--settings", settingsPath,
		"--output", outDir,
		"--team", "Laget",
		"--date", "2026-01-20",
	}

	_, err := runCLI(t, args...)
	require.NoError(t, err)

	_, err = runCLI(t, args...)
	assert.ErrorIs(t, err, errDocumentExists)

	_, err = runCLI(t, append(args, "--force")...)
	assert.NoError(t, err)
}

func TestGenerate_InvalidDate(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(
		t,
		"generate",
		"--settings", filepath.Join(dir, "settings.json"),
		"--output", dir,
		"--team", "Laget",
		"--date", "20/01/2026",
	)
	assert.ErrorIs(t, err, minutes.ErrInvalidDate)
}

func TestGenerate_InputFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "standup.yaml")
	require.NoError(t, os.WriteFile(inputPath, []byte(`team: Boiler Room
date: 2026-01-21
participants: Anna, Björn, Cecilia
status: needs-help
worked:
  - Felsökning av driftsättning
obstacles:
  - Saknade rättigheter i registret
next_steps:
  - Eskalera till plattformsteamet
`), 0644))

	outDir := filepath.Join(dir, "out")
	out, err := runCLI(
		t,
		"generate",
		"--settings", filepath.Join(dir, "settings.json"),
		"--output", outDir,
		"--input", inputPath,
		"--status", "on-track",
	)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	m, err := minutes.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Boiler Room", m.Team)
	assert.Equal(t, "2026-01-21", m.Date)
	// The flag wins over the input file.
	assert.Equal(t, minutes.StatusOnTrack, m.Status)
	assert.Equal(t, []string{"Felsökning av driftsättning"}, m.Worked)
}

func TestShow_PrintsDocument(t *testing.T) {
	dir := t.TempDir()
	m := minutes.Minutes{
		Team:         "Boiler Room",
		Date:         "2026-01-20",
		Participants: "Anna",
		Worked:       []string{"testning"},
		Status:       minutes.StatusOnTrack,
	}
	path := filepath.Join(dir, m.Filename())
	require.NoError(t, minutes.WriteFile(m, path))

	out, err := runCLI(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Team:      Boiler Room")
	assert.Contains(t, out, "Datum:     2026-01-20")
	assert.Contains(t, out, "🟢 På spår")
	assert.Contains(t, out, "- testning")
}

func TestShow_MissingFile(t *testing.T) {
	_, err := runCLI(t, "show", filepath.Join(t.TempDir(), "saknas.docx"))
	assert.Error(t, err)
}

func TestPublish_MissingDocument(t *testing.T) {
	dir := t.TempDir()
	settings := minutes.DefaultSettings()
	settings.OutputDir = dir
	require.NoError(t, minutes.SaveSettings(filepath.Join(dir, "settings.json"), settings))

	_, err := runCLI(t, "publish", "--settings", filepath.Join(dir, "settings.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no document to publish")
}

func TestLoadInput_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("team: [unclosed"), 0644))

	_, err := loadInput(path)
	assert.ErrorContains(t, err, "parse input file")
}
