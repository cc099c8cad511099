package minutes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFile(t *testing.T) {
	s := LoadSettings(filepath.Join(t.TempDir(), "settings.json"))
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := LoadSettings(path)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"last_team": "Boiler Room"}`), 0644))

	s := LoadSettings(path)
	assert.Equal(t, "Boiler Room", s.LastTeam)
	assert.Equal(t, "./output", s.OutputDir)
	assert.Equal(t, "main", s.GitHub.DefaultBranch)
	assert.Equal(t, "Lägg till protokoll", s.GitHub.CommitPrefix)
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	want := Settings{
		OutputDir: "/srv/protokoll",
		LastTeam:  "Boiler Room",
		GitHub: GitHubSettings{
			RepoURL:        "git@github.com:boilerroom/docs.git",
			LocalReposBase: "/srv/repos",
			RepoSubdir:     "docs/protokoll",
			DefaultBranch:  "develop",
			CommitPrefix:   "Lägg till protokoll",
		},
	}

	require.NoError(t, SaveSettings(path, want))
	got := LoadSettings(path)
	assert.Equal(t, want, got)

	// No temp file left behind.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandUser("~"))
	assert.Equal(t, filepath.Join(home, "dev"), ExpandUser("~/dev"))
	assert.Equal(t, "/abs/path", ExpandUser("/abs/path"))
	assert.Equal(t, "rel/path", ExpandUser("rel/path"))
	assert.Equal(t, "~user/x", ExpandUser("~user/x"))
}
