package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/famcal/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &cliApp{}
	t.Cleanup(a.closeLog)

	var out, errOut bytes.Buffer
	root := a.rootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, config.CmdVersion)
	require.NoError(t, err)
	assert.Contains(t, out, config.AppName)
	assert.Contains(t, out, runtime.GOOS)
}

func TestMonthCommand_LocalSnapshot(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "family.json")
	require.NoError(t, os.WriteFile(snapshot, []byte(`{
	  "events": [{"title": "Picnic", "date": "2024-09-21"}],
	  "birthdays": [{"memberId": "1", "name": "Mina", "monthDay": "09-30"}]
	}`), 0o600))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := config.DefaultFile()
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.Sources = []config.SourceConfig{{ID: "family", Path: snapshot}}
	require.NoError(t, config.Save(cfgPath, cfg))

	out, err := execute(t, config.CmdMonth,
		"--"+config.FlagConfig, cfgPath,
		"--"+config.FlagYear, "2024",
		"--"+config.FlagMonth, "9",
		"--"+config.FlagLang, "fr",
	)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "2024-09"))
	assert.Contains(t, out, "dim.")
	assert.Contains(t, out, "2024-09-21  Picnic")
	assert.Contains(t, out, "Mina")
}

func TestMonthCommand_InvalidMonth(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(snapshot, []byte(`{}`), 0o600))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := config.DefaultFile()
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.Sources = []config.SourceConfig{{ID: "empty", Mode: config.SourceModeLocal, Path: snapshot}}
	require.NoError(t, config.Save(cfgPath, cfg))

	_, err := execute(t, config.CmdMonth, "--"+config.FlagConfig, cfgPath, "--"+config.FlagMonth, "13")
	assert.Error(t, err)
}

func TestPasswordCommand_EmptyInput(t *testing.T) {
	a := &cliApp{}
	t.Cleanup(a.closeLog)

	root := a.rootCmd()
	root.SetIn(strings.NewReader("\n"))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{config.CmdPassword, "alice"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPasswordEmpty)
}
