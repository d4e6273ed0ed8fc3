package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"MarkerBegin", config.MarkerBegin},
		{"MarkerEnd", config.MarkerEnd},
		{"SupportedVersion", config.SupportedVersion},
		{"ICalProdid", config.ICalProdid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestAllowedPropertyNames_Whitelist pins the names the validator relies on.
func TestAllowedPropertyNames_Whitelist(t *testing.T) {
	assert.Len(t, config.AllowedPropertyNames, 38)
	for _, must := range []string{"FN", "N", "BDAY", "ANNIVERSARY", "VERSION", "TEL", "EMAIL", "UID"} {
		assert.Contains(t, config.AllowedPropertyNames, must)
	}
	for _, name := range config.AllowedPropertyNames {
		assert.Equal(t, strings.ToUpper(name), name, "whitelist entries are stored upper-case")
	}
}

func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Contacts/"))
}

func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second)
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute)
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second)
	assert.Greater(t, config.MaxHTTPResponseSize, 0)
	assert.Equal(t, 5, config.NComponents)
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		port    string
		wantErr string
	}{
		{"18080", ""},
		{" 1 ", ""},
		{"65535", ""},
		{"", config.ErrPortRequired},
		{"http", config.ErrPortNumber},
		{"0", config.ErrPortRange},
		{"65536", config.ErrPortRange},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			err := config.ValidatePort(tt.port)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	content := "cards_dir = \"/data/cards\"\nserver_port = \"9000\"\nlanguage = \"fr\"\nlog_format = \"json\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, used, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, used)
	assert.Equal(t, "/data/cards", s.CardsDir)
	assert.Equal(t, "9000", s.ServerPort)
	assert.Equal(t, "fr", s.Language)
	assert.Equal(t, config.LogFormatJSON, s.LogFormat)
	// Untouched keys fall back to defaults.
	assert.Equal(t, config.DefaultRefreshMin, s.RefreshMinutes)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrConfigRead)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("server_port = \"9000\"\n"), 0o600))
	t.Setenv("GOCONTACTS_SERVER_PORT", "9100")

	s, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", s.ServerPort)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_format = \"xml\"\n"), 0o600))

	_, _, err := config.Load(path)
	require.Error(t, err)
	assert.Equal(t, config.ErrInvalidLogFormat, err.Error())
}

func TestWriteSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", config.ConfigFileName)
	want := config.DefaultSettings()
	want.RemoteURL = "https://dav.example.com/addressbook"

	require.NoError(t, config.WriteSettings(path, want, false))

	got, used, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, want, got)

	// Refuses to clobber without overwrite.
	err = config.WriteSettings(path, want, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrFileExists)
	assert.NoError(t, config.WriteSettings(path, want, true))
}

func TestResolveIndexDir(t *testing.T) {
	s := config.DefaultSettings()
	s.IndexDir = "/tmp/custom-index"
	dir, err := s.ResolveIndexDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-index", dir)
}
