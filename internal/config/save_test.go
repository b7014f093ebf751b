package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSaveValues_SetsValues(t *testing.T) {
	path := writeConfig(t, DefaultConfigTemplate())

	err := SaveValues(path, map[string]string{
		"phone":    "+7 (904)-148-76-23",
		"birthday": "01/02/2000",
	})
	require.NoError(t, err)

	cfg := loadConfigFromYAML(t, readFile(t, path))
	require.Equal(t, "+7 (904)-148-76-23", cfg.Fields[0].Value)
	require.Equal(t, "01/02/2000", cfg.Fields[1].Value)
}

func TestSaveValues_PreservesComments(t *testing.T) {
	path := writeConfig(t, `# my fields
fields:
  - name: zip # five digits
    template: "99999"
ui:
  width: 12
`)

	require.NoError(t, SaveValues(path, map[string]string{"zip": "01234"}))

	content := readFile(t, path)
	require.Contains(t, content, "# my fields")
	require.Contains(t, content, "# five digits")
	require.Contains(t, content, `value: "01234"`)
	require.Contains(t, content, "width: 12")

	cfg := loadConfigFromYAML(t, content)
	require.Equal(t, "01234", cfg.Fields[0].Value, "leading zero survives as a string")
}

func TestSaveValues_ReplacesAndRemoves(t *testing.T) {
	path := writeConfig(t, `fields:
  - name: a
    template: "99"
    value: "12"
  - name: b
    template: "99"
    value: "34"
`)

	require.NoError(t, SaveValues(path, map[string]string{"a": "56", "b": ""}))

	cfg := loadConfigFromYAML(t, readFile(t, path))
	require.Equal(t, "56", cfg.Fields[0].Value)
	require.Equal(t, "", cfg.Fields[1].Value)
	require.NotContains(t, readFile(t, path), `"34"`)
}

func TestSaveValues_UnknownNameIgnored(t *testing.T) {
	path := writeConfig(t, `fields:
  - name: a
    template: "99"
`)
	require.NoError(t, SaveValues(path, map[string]string{"nope": "1"}))
	require.NotContains(t, readFile(t, path), "nope")
}

func TestSaveValues_Errors(t *testing.T) {
	err := SaveValues(filepath.Join(t.TempDir(), "missing.yaml"), map[string]string{"a": "1"})
	require.ErrorContains(t, err, "reading config")

	err = SaveValues(writeConfig(t, "ui:\n  width: 3\n"), map[string]string{"a": "1"})
	require.EqualError(t, err, "config has no fields list")

	err = SaveValues(writeConfig(t, "- just\n- a list\n"), map[string]string{"a": "1"})
	require.ErrorContains(t, err, "expected a mapping")
}

func TestSaveValues_NoTempFilesLeft(t *testing.T) {
	path := writeConfig(t, DefaultConfigTemplate())
	require.NoError(t, SaveValues(path, map[string]string{"phone": "+7 (9"}))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
