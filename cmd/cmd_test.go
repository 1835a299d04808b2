package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexiusacademia/gobulb/internal/config"
	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoundationFlagsSquareDefault(t *testing.T) {
	ff := foundationFlags{width: 2, pressure: 150}
	f, err := ff.foundation()
	require.NoError(t, err)
	assert.Equal(t, 2.0, f.Length())

	ff.length = 3
	f, err = ff.foundation()
	require.NoError(t, err)
	assert.Equal(t, 3.0, f.Length())

	_, err = (&foundationFlags{width: -1, pressure: 10}).foundation()
	var verr *soil.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSoilFlags(t *testing.T) {
	_, ok, err := (&soilFlags{gamma: 18, poisson: 0.3}).soil()
	require.NoError(t, err)
	assert.False(t, ok)

	s, ok, err := (&soilFlags{name: "sand", gamma: 18, poisson: 0.25}).soil()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.25, s.PoissonRatio())

	_, _, err = (&soilFlags{name: "sand", gamma: 18, poisson: 0.6}).soil()
	assert.Error(t, err)
}

func TestSoilFlagsWithoutName(t *testing.T) {
	parse := func(args ...string) (soil.Soil, bool, error) {
		t.Helper()
		var sf soilFlags
		c := &cobra.Command{Use: "test"}
		sf.register(c)
		require.NoError(t, c.ParseFlags(args))
		return sf.soil()
	}

	_, ok, err := parse()
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = parse("--poisson", "0.7")
	var verr *soil.ValidationError
	require.ErrorAs(t, err, &verr)

	_, _, err = parse("--gamma=-4")
	require.ErrorAs(t, err, &verr)

	s, ok, err := parse("--gamma", "20")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20.0, s.UnitWeight())
	assert.Equal(t, soil.DefaultPoissonRatio, s.PoissonRatio())
	assert.Empty(t, s.Name())
}

func TestMethodOf(t *testing.T) {
	cfg = config.Default()
	m, err := methodOf("")
	require.NoError(t, err)
	assert.Equal(t, stress.Newmark, m)

	cfg.Engine.DefaultMethod = "integration"
	t.Cleanup(func() { cfg = config.Default() })
	m, err = methodOf("")
	require.NoError(t, err)
	assert.Equal(t, stress.Integration, m)

	m, err = methodOf("Newmark")
	require.NoError(t, err)
	assert.Equal(t, stress.Newmark, m)

	_, err = methodOf("simpson")
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	dir := t.TempDir()

	assert.Equal(t, "field.csv", outputPath("field.csv", "stress_bulb", "csv", now))
	assert.Equal(t, filepath.Join(dir, "stress_bulb_20260314_093000.csv"),
		outputPath(dir, "stress_bulb", "csv", now))
	assert.Equal(t, filepath.Join("out", "stress_bulb_20260314_093000.xlsx"),
		outputPath("out"+string(os.PathSeparator), "stress_bulb", "xlsx", now))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(config.LogConfig{Level: "warn", Format: "json"}, false, &buf)
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), out)
	assert.Contains(t, out, `"msg":"shown"`)

	buf.Reset()
	l, err = newLogger(config.LogConfig{Level: "warn", Format: "text"}, true, &buf)
	require.NoError(t, err)
	l.Debug("debug line")
	assert.Contains(t, buf.String(), "msg=\"debug line\"")

	_, err = newLogger(config.LogConfig{Level: "loud"}, false, &buf)
	assert.Error(t, err)
}

func TestPointLoadCommand(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"point-load", "--load", "100", "--x", "0", "--y", "0", "--z", "2"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"point-load", "--load", "100", "--x", "0", "--y", "0", "--z", "0"})
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, stress.ErrSingular)
	var serr *stress.SingularityError
	assert.ErrorAs(t, err, &serr)
}
