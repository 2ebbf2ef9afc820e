package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/scene"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), io.Discard, args...)
}

func executeContext(t *testing.T, ctx context.Context, stderr io.Writer, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg := filepath.Join(t.TempDir(), "settings.toml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(append(args, "--config", cfg))
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

// resetFlags puts every flag back to its default between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestSimulateAssembles(t *testing.T) {
	out, err := execute(t, "simulate", "--frames", "600", "--target", "tree")
	require.NoError(t, err)

	var st scene.Status
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &st))
	assert.Equal(t, models.TreeShape, st.Target)
	assert.GreaterOrEqual(t, st.Blend, float32(0.99))
	assert.Equal(t, uint64(600), st.Frame)
	assert.Equal(t, 50000, st.Particles)
	assert.Len(t, st.Groups, 5)
	total := 0
	for _, n := range st.Groups {
		total += n
	}
	assert.Equal(t, 800, total)
}

func TestSimulateSample(t *testing.T) {
	out, err := execute(t, "simulate", "--frames", "600", "--target", "tree", "--sample", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var report particleReport
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &report))
	assert.Equal(t, 50000, report.Resolved)
	assert.Len(t, report.Sample, 3)
	assert.Less(t, report.MeanTreeDistance, float32(0.1), "assembled particles sit on the tree")
}

func TestSimulateRejectsTarget(t *testing.T) {
	_, err := execute(t, "simulate", "--frames", "1", "--target", "sideways")
	assert.Error(t, err)
}

func TestShareThenInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	out, err := execute(t, "share", "--base", "https://example.com/", path)
	require.NoError(t, err)
	link := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(link, "https://example.com/#tree="))

	out, err = execute(t, "inspect", link)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "data:image/png;base64,")
}

func TestShareRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just words"), 0o644))
	_, err := execute(t, "share", path)
	assert.Error(t, err)
}

func TestInspectRejectsGarbage(t *testing.T) {
	_, err := execute(t, "inspect", "https://example.com/#tree=%%%")
	assert.Error(t, err)
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "treemorph")
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "abc", shorten("abc", 5))
	assert.Equal(t, "ab...", shorten("abcdefgh", 5))
}

func TestRunContinuesAfterBadLayout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var logs bytes.Buffer
	start := time.Now()
	_, err := executeContext(t, ctx, &logs, "run", "--headless", "--hand", "none", "--listen", "", "#tree=not-a-layout!!")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond, "session kept running until cancelled")
	assert.Contains(t, logs.String(), "shared layout rejected")
}
