package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallModel = []string{"--groups", "1", "--blocks", "1", "--feats", "16"}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCLI()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	img.SetRGBA(0, 0, color.RGBA{A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "han version "+version+"\n", out)

	out, err = execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestInfo(t *testing.T) {
	out, err := execute(t, append([]string{"info"}, smallModel...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "groups 1, blocks 1, feats 16, scale x1")
	assert.Contains(t, out, "COMPONENT")
	assert.Contains(t, out, "last_conv")
	assert.Contains(t, out, "17186")
}

func TestInfo_InvalidFeats(t *testing.T) {
	_, err := execute(t, "info", "--groups", "1", "--blocks", "1", "--feats", "8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calayer")
}

func TestRun(t *testing.T) {
	t.Setenv("HAN_NUM_PARALLEL", "2")
	t.Setenv("HAN_NUM_THREADS", "2")
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	inputs := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}
	for _, p := range inputs {
		writePNG(t, p, 6, 4)
	}

	args := append([]string{"run", "-o", outDir, "--prescale", "2"}, smallModel...)
	_, err := execute(t, append(args, inputs...)...)
	require.NoError(t, err)

	for _, name := range []string{"a_han.png", "b_han.png"} {
		f, err := os.Open(filepath.Join(outDir, name))
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(f)
		require.NoError(t, f.Close())
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Width)
		assert.Equal(t, 8, cfg.Height)
	}
}

func TestRun_MissingInput(t *testing.T) {
	args := append([]string{"run", "-o", t.TempDir()}, smallModel...)
	_, err := execute(t, append(args, filepath.Join(t.TempDir(), "missing.png"))...)
	assert.Error(t, err)
}

func TestRun_RequiresArgs(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	r := &runner{outDir: "out"}
	assert.Equal(t, filepath.Join("out", "photo_han.png"), r.outputPath(filepath.Join("in", "photo.jpg")))
}

func TestShare(t *testing.T) {
	assert.Equal(t, "25.0%", share(1, 4))
	assert.Equal(t, "0.0%", share(0, 0))
}
