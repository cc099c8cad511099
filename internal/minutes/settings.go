package minutes

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// SettingsFilename is the default settings file name.
const SettingsFilename = "settings.json"

// GitHubSettings configures the publish workflow.
type GitHubSettings struct {
	RepoURL        string `json:"repo_url"`
	LocalReposBase string `json:"local_repos_base"`
	RepoSubdir     string `json:"repo_subdir"`
	DefaultBranch  string `json:"default_branch"`
	CommitPrefix   string `json:"commit_prefix"`
}

// Settings is the persisted tool configuration.
type Settings struct {
	OutputDir string         `json:"output_dir"`
	LastTeam  string         `json:"last_team"`
	GitHub    GitHubSettings `json:"github"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		OutputDir: "./output",
		LastTeam:  "Teamnamn",
		GitHub: GitHubSettings{
			LocalReposBase: "~/dev",
			RepoSubdir:     "docs/protokoll",
			DefaultBranch:  "main",
			CommitPrefix:   "Lägg till protokoll",
		},
	}
}

// LoadSettings reads the settings file. A missing or unparseable file
// yields the defaults; settings are best-effort state, never a reason to
// refuse to start.
func LoadSettings(path string) Settings {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultSettings()
	}

	if strings.TrimSpace(settings.OutputDir) == "" {
		settings.OutputDir = DefaultSettings().OutputDir
	}
	if strings.TrimSpace(settings.LastTeam) == "" {
		settings.LastTeam = DefaultSettings().LastTeam
	}

	return settings
}

// SaveSettings writes the settings file atomically.
func SaveSettings(path string, settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ExpandUser resolves a leading "~" against the current user's home
// directory, leaving the path untouched when the home dir is unknown.
func ExpandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
