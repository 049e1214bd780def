package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/han/internal/backend/cpu"
	"github.com/born-ml/han/internal/envconfig"
	"github.com/born-ml/han/internal/han"
	"github.com/born-ml/han/internal/imageio"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run IMAGE [IMAGE...]",
		Short: "Run a freshly initialized model over images",
		Long: `Run decodes every IMAGE, passes it through a model built from the
model flags and writes the result as PNG into the output directory.

Parameters are initialized from --seed; there is no weight file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunHandler,
	}
	cmd.Flags().StringP("output", "o", ".", "Output directory")
	cmd.Flags().Int("prescale", 1, "Upscale inputs with Catmull-Rom before the model")
	return cmd
}

// RunHandler processes the given images concurrently.
func RunHandler(cmd *cobra.Command, args []string) error {
	cfg, err := modelConfig(cmd)
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	prescale, err := cmd.Flags().GetInt("prescale")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	backend := newBackend()
	model, err := han.New(cfg, backend)
	if err != nil {
		return err
	}

	r := &runner{
		model:    model,
		backend:  backend,
		rgbRange: cfg.RGBRange,
		prescale: prescale,
		outDir:   outDir,
		progress: !envconfig.NoProgress(),
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(int(envconfig.NumParallel()), 1))
	for _, path := range args {
		g.Go(func() error {
			return r.process(ctx, path)
		})
	}
	return g.Wait()
}

type runner struct {
	model    *han.HAN[*cpu.CPUBackend]
	backend  *cpu.CPUBackend
	rgbRange float32
	prescale int
	outDir   string
	progress bool
}

// outputPath maps "in/photo.jpg" to "<outDir>/photo_han.png".
func (r *runner) outputPath(path string) string {
	base := filepath.Base(path)
	return filepath.Join(r.outDir, strings.TrimSuffix(base, filepath.Ext(base))+"_han.png")
}

func (r *runner) process(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	img, err := imageio.Load(path)
	if err != nil {
		return err
	}
	x := imageio.ToTensor(imageio.Upscale(img, r.prescale), r.rgbRange, r.backend)

	y, err := r.model.Forward(x)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	// A forward pass is not interruptible; drop its result if cancelled meanwhile.
	if err := ctx.Err(); err != nil {
		return err
	}

	out := r.outputPath(path)
	if err := imageio.EncodeFile(out, y, r.rgbRange); err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}

	if r.progress {
		slog.Info("image processed", "input", path, "output", out,
			"shape", y.Shape(), "elapsed", time.Since(start).Round(time.Millisecond))
	}
	return nil
}
