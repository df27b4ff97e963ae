// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drillbit/drillbit/internal/config"
	"github.com/drillbit/drillbit/internal/credential"
	"github.com/drillbit/drillbit/internal/manifest"
	"github.com/drillbit/drillbit/pkg/errutil"
)

type installFixture struct {
	project string
	dest    string
	logs    *bytes.Buffer
	out     *bytes.Buffer
	deps    *InstallDeps
}

func newInstallFixture(t *testing.T, manifestTOML string, files map[string]string) *installFixture {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	configFile = ""
	original := slog.Default()
	t.Cleanup(func() {
		configFile = ""
		slog.SetDefault(original)
	})

	f := &installFixture{
		project: filepath.Join(t.TempDir(), "game"),
		dest:    t.TempDir(),
		logs:    new(bytes.Buffer),
		out:     new(bytes.Buffer),
	}
	require.NoError(t, os.MkdirAll(f.project, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(f.project, manifest.FileName), []byte(manifestTOML), 0o600))
	for rel, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(f.project, rel), []byte(content), 0o600))
	}

	f.deps = &InstallDeps{
		Getwd:              func() (string, error) { return f.project, nil },
		PluginsDirLocator:  func(string) (string, error) { return f.dest, nil },
		CredentialProvider: func(*config.Config) credential.Provider { return credential.Static("") },
		LogWriter:          f.logs,
	}
	return f
}

func (f *installFixture) run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCmd()
	cmd.SetOut(f.out)
	require.NoError(t, cmd.ParseFlags(args))
	return runInstallWithDeps(context.Background(), cmd, f.deps)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

const twoLocalPlugins = `
[plugins]
alpha = { local = "alpha.rbxm" }
helper = { local = "helper.luau" }
`

func TestInstall_LocalPlugins(t *testing.T) {
	f := newInstallFixture(t, twoLocalPlugins, map[string]string{
		"alpha.rbxm":  "alpha",
		"helper.luau": "return {}",
	})

	require.NoError(t, f.run(t))
	assert.ElementsMatch(t, []string{"game_alpha.rbxm", "game_helper.lua"}, listDir(t, f.dest))
	assert.Contains(t, f.logs.String(), "plugins installed successfully")
	assert.Contains(t, f.logs.String(), "run_id=")
}

func TestInstall_DryRun(t *testing.T) {
	f := newInstallFixture(t, twoLocalPlugins, map[string]string{
		"alpha.rbxm":  "alpha",
		"helper.luau": "return {}",
	})

	require.NoError(t, f.run(t, "--dry-run"))
	assert.Empty(t, listDir(t, f.dest))
	assert.Contains(t, f.out.String(), "write  alpha -> "+filepath.Join(f.dest, "game_alpha.rbxm"))
	assert.Contains(t, f.out.String(), "write  helper -> "+filepath.Join(f.dest, "game_helper.lua"))
}

func TestInstall_JSONLogs(t *testing.T) {
	f := newInstallFixture(t, twoLocalPlugins, map[string]string{
		"alpha.rbxm":  "alpha",
		"helper.luau": "return {}",
	})

	require.NoError(t, f.run(t, "--log-format", "json"))
	assert.Contains(t, f.logs.String(), `"service":"drillbit"`)
}

func TestInstall_MetricsTextfile(t *testing.T) {
	f := newInstallFixture(t, twoLocalPlugins, map[string]string{
		"alpha.rbxm":  "same",
		"helper.luau": "same",
	})
	textfile := filepath.Join(t.TempDir(), "drillbit.prom")

	require.NoError(t, f.run(t, "--metrics-textfile", textfile))

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `drillbit_plugins_total{kind="local",outcome="written"} 1`)
	assert.Contains(t, string(data), `drillbit_plugins_total{kind="local",outcome="skipped"} 1`)
}

func TestInstall_ManifestFlag(t *testing.T) {
	f := newInstallFixture(t, "[plugins]\n", nil)
	other := filepath.Join(t.TempDir(), "other.toml")
	require.NoError(t, os.WriteFile(other, []byte(`
[plugins]
x = { local = "x.lua" }
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(other), "x.lua"), []byte("x"), 0o600))

	require.NoError(t, f.run(t, "--manifest", other))
	assert.Equal(t, []string{"game_x.lua"}, listDir(t, f.dest))
}

func TestInstall_MissingManifest(t *testing.T) {
	f := newInstallFixture(t, "", nil)
	require.NoError(t, os.Remove(filepath.Join(f.project, manifest.FileName)))

	err := f.run(t)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MANIFEST_READ_FAILED")
}

func TestInstall_InvalidConfig(t *testing.T) {
	f := newInstallFixture(t, twoLocalPlugins, nil)

	err := f.run(t, "--log-format", "xml")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestInstall_PluginsDirError(t *testing.T) {
	f := newInstallFixture(t, twoLocalPlugins, nil)
	f.deps.PluginsDirLocator = func(string) (string, error) {
		return "", errors.New("studio missing")
	}

	err := f.run(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "studio missing")
}

func TestInstall_PluginsDirOverridePassedThrough(t *testing.T) {
	f := newInstallFixture(t, "[plugins]\n", nil)
	var got string
	f.deps.PluginsDirLocator = func(override string) (string, error) {
		got = override
		return f.dest, nil
	}

	require.NoError(t, f.run(t, "--plugins-dir", "/custom"))
	assert.Equal(t, "/custom", got)
}

func TestInstall_CloudWithoutCookieFails(t *testing.T) {
	f := newInstallFixture(t, `
[plugins]
asset = { cloud = 1 }
`, nil)

	err := f.run(t)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_CREDENTIAL_NOT_FOUND")
	errutil.AssertErrorContext(t, err, "plugin", "asset")
	assert.Empty(t, listDir(t, f.dest))
}

func TestInstallCmd_Registered(t *testing.T) {
	var found *cobra.Command
	for _, c := range NewRootCmd().Commands() {
		if c.Name() == "install" {
			found = c
		}
	}
	require.NotNil(t, found)
	assert.NotNil(t, found.RunE)
}
