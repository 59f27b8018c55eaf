package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) (configPath, ledgerPath string) {
	t.Helper()
	dir := t.TempDir()
	ledgerPath = filepath.Join(dir, "verified_users.json")
	configPath = filepath.Join(dir, "config.yaml")
	body := "ledger:\n  driver: json\n  json_path: " + ledgerPath + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0o644))
	return configPath, ledgerPath
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"smpverify", "--config", configPath}, args...))
	return out.String(), err
}

func TestLedgerCommands_AddShowList(t *testing.T) {
	cfg, _ := writeTestConfig(t)

	out, err := run(t, cfg, "ledger", "add", "42", "steve")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 42")

	out, err = run(t, cfg, "ledger", "add", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 42")

	out, err = run(t, cfg, "ledger", "show", "42")
	require.NoError(t, err)
	assert.Contains(t, out, `"username": "steve"`)

	out, err = run(t, cfg, "ledger", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "USER ID")
	assert.Contains(t, out, "steve")
}

func TestLedgerCommands_ShowMissing(t *testing.T) {
	cfg, _ := writeTestConfig(t)

	_, err := run(t, cfg, "ledger", "show", "404")
	assert.Error(t, err)
}

func TestLedgerCommands_ImportExport(t *testing.T) {
	cfg, _ := writeTestConfig(t)
	legacy := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`{
  "111": {"username": "alex", "first_verified": "2024-01-02T03:04:05.123456", "last_verified": "2024-02-02T03:04:05.123456"},
  "222": {"username": null, "first_verified": "2024-03-01T00:00:00", "last_verified": "2024-03-01T00:00:00"}
}`), 0o644))

	out, err := run(t, cfg, "ledger", "import", legacy)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 entries")

	out, err = run(t, cfg, "ledger", "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"111"`)
	assert.Contains(t, out, `"alex"`)
	assert.Contains(t, out, `"222"`)
	assert.Contains(t, out, `"username": null`)
}

func TestLedgerCommands_AddRequiresUserID(t *testing.T) {
	cfg, _ := writeTestConfig(t)

	_, err := run(t, cfg, "ledger", "add")
	assert.Error(t, err)
}
