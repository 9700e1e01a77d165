package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "computeshader "))
	assert.True(t, strings.HasPrefix(lines[7], "triangle "))
	assert.Contains(t, out, "per frame fences and semaphores")
}

func TestListRejectsArgs(t *testing.T) {
	_, err := execute(t, "list", "extra")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, versionString()+"\n", out)
	assert.Contains(t, out, "vkexamples "+Version)
}

func TestRunRequiresOneExample(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestRunUnknownExample(t *testing.T) {
	err := runExample(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown example "nope"`)
}

func TestRunCompletion(t *testing.T) {
	names, _ := runCmd.ValidArgsFunction(runCmd, nil, "")
	assert.Contains(t, names, "triangle")
	assert.Contains(t, names, "deviceinfo")

	names, _ = runCmd.ValidArgsFunction(runCmd, []string{"triangle"}, "")
	assert.Empty(t, names)
}

func TestLoadConfigLogLevel(t *testing.T) {
	c, err := loadConfig("", "debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Logging.Level)

	_, err = loadConfig("", "loud")
	assert.Error(t, err)
}

func TestLoadedConfigReportsInitError(t *testing.T) {
	saved, savedErr := cfg, configErr
	t.Cleanup(func() { cfg, configErr = saved, savedErr })

	cfgFile, logLevel = "", "loud"
	t.Cleanup(func() { logLevel = "" })
	initConfig()

	_, err := loadedConfig()
	assert.Error(t, err)
}
