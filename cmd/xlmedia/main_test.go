package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

const testManifest = `images:
  - name: logo
    path: logo.png
  - name: paper
    path: paper.PNG
sheets:
  - name: Report
    background: paper
    placements:
      - image: logo
        range: C3:E6
      - image: logo
        range:
          tl: {col: 0.1125, row: 0.4}
          ext: {width: 100, height: 100}
          editAs: absolute
        hyperlink: http://www.somewhere.com
        tooltip: www.somewhere.com
`

// setupWorkspace writes the manifest and its images into a temp dir and
// isolates the CLI from the user's config and environment.
func setupWorkspace(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(configDirEnvKeyForTest, dir)
	t.Setenv(logLevelEnvKey, "")
	writeTestPNG(t, filepath.Join(dir, "logo.png"), color.RGBA{R: 255, A: 255})
	writeTestPNG(t, filepath.Join(dir, "paper.PNG"), color.RGBA{B: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book.yaml"), []byte(manifest), 0o644))
	return dir
}

const configDirEnvKeyForTest = "XLMEDIA_CONFIG_DIR"

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPlaceAndInspect(t *testing.T) {
	dir := setupWorkspace(t, testManifest)
	out := filepath.Join(dir, "out.xlsx")

	stdout, _, err := runCLI(t, "place", filepath.Join(dir, "book.yaml"), "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+out)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	stdout, _, err = runCLI(t, "inspect", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Images: 1\n")
	assert.Contains(t, stdout, "Sheet Report (2 images)")

	stdout, _, err = runCLI(t, "--json", "inspect", out)
	require.NoError(t, err)
	var model struct {
		Media      []json.RawMessage `json:"media"`
		Worksheets []struct {
			Name  string            `json:"name"`
			Media []json.RawMessage `json:"media"`
		} `json:"worksheets"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &model))
	assert.Len(t, model.Media, 1)
	require.Len(t, model.Worksheets, 1)
	assert.Equal(t, "Report", model.Worksheets[0].Name)
	assert.Len(t, model.Worksheets[0].Media, 2)

	stdout, _, err = runCLI(t, "inspect", out, "--where", "tl.col >= 2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Report\t")
	assert.Contains(t, stdout, "\t2,2\n")
	assert.NotContains(t, stdout, "\t0,0\n")
}

func TestPlace_RequiresOutput(t *testing.T) {
	dir := setupWorkspace(t, testManifest)
	_, _, err := runCLI(t, "place", filepath.Join(dir, "book.yaml"))
	assert.ErrorContains(t, err, "--output is required")
}

func TestValidate(t *testing.T) {
	dir := setupWorkspace(t, testManifest)
	stdout, _, err := runCLI(t, "validate", filepath.Join(dir, "book.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ok\n", stdout)

	stdout, _, err = runCLI(t, "--json", "validate", filepath.Join(dir, "book.yaml"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, stdout)
}

func TestValidate_Warnings(t *testing.T) {
	dir := setupWorkspace(t, `images:
  - name: logo
    path: logo.png
sheets:
  - name: s
    placements:
      - image: logo
        range: {tl: {col: 1, row: 1}, ext: {width: 0, height: 10}}
        tooltip: hover
`)
	stdout, _, err := runCLI(t, "validate", filepath.Join(dir, "book.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "[WARN] s/")
	assert.Contains(t, stdout, "zero area")
	assert.Contains(t, stdout, "tooltip without hyperlink")
}

func TestValidate_UnknownImage(t *testing.T) {
	dir := setupWorkspace(t, `images: []
sheets:
  - name: s
    placements:
      - image: ghost
        range: A1
`)
	_, _, err := runCLI(t, "validate", filepath.Join(dir, "book.yaml"))
	assert.ErrorContains(t, err, "ghost")
}

func TestInvalidLogLevelFlag(t *testing.T) {
	dir := setupWorkspace(t, testManifest)
	_, _, err := runCLI(t, "--log-level", "loud", "validate", filepath.Join(dir, "book.yaml"))
	assert.ErrorContains(t, err, "invalid --log-level")
}

func TestConfigFile(t *testing.T) {
	dir := setupWorkspace(t, `images:
  - name: logo
    path: logo.png
sheets:
  - name: s
    placements:
      - image: logo
        range: {tl: {col: 1, row: 1}, ext: {width: 10, height: 10}}
`)
	cfgPath := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`default_edit_as = "absolute"`), 0o644))
	out := filepath.Join(dir, "out.xlsx")

	_, _, err := runCLI(t, "--config", cfgPath, "place", filepath.Join(dir, "book.yaml"), "-o", out)
	require.NoError(t, err)

	_, _, err = runCLI(t, "--config", filepath.Join(dir, "missing.toml"), "validate", filepath.Join(dir, "book.yaml"))
	assert.ErrorContains(t, err, "not found")
}
