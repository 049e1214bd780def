package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/born-ml/han/internal/backend/cpu"
	"github.com/born-ml/han/internal/envconfig"
	"github.com/born-ml/han/internal/han"
	"github.com/born-ml/han/internal/parallel"
)

const version = "v0.1.0-dev"

// NewCLI creates the root command with every subcommand attached.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "han",
		Short:         "Holistic Attention Network for image super-resolution",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), envconfig.LogLevel())
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
	addModelFlags(rootCmd)

	infoCmd := newInfoCmd()
	runCmd := newRunCmd()
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run:   versionHandler,
	}

	envVars := envconfig.AsMap()
	appendEnvDocs(infoCmd, []envconfig.EnvVar{envVars["HAN_DEBUG"]})
	appendEnvDocs(runCmd, []envconfig.EnvVar{
		envVars["HAN_DEBUG"],
		envVars["HAN_NUM_THREADS"],
		envVars["HAN_NUM_PARALLEL"],
		envVars["HAN_NOPROGRESS"],
	})

	rootCmd.AddCommand(infoCmd, runCmd, versionCmd)
	return rootCmd
}

func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "han version %s\n", version)
}

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// setupLogging installs the default slog handler: text on a terminal,
// JSON otherwise.
func setupLogging(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level < slog.LevelInfo,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.SourceKey {
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}

	var handler slog.Handler
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func addModelFlags(cmd *cobra.Command) {
	def := han.DefaultConfig()
	flags := cmd.PersistentFlags()
	flags.Int("groups", def.NumResGroups, "Number of residual groups")
	flags.Int("blocks", def.NumResBlocks, "Number of RCABs per residual group")
	flags.Int("feats", def.NumFeats, "Number of feature channels (multiple of 16)")
	flags.Int("reduction", def.Reduction, "Channel attention reduction (fixed at 16 internally)")
	flags.Float32("res-scale", def.ResScale, "Residual scale (recorded only)")
	flags.Bool("upsample", false, "Enable the sub-pixel upsampler")
	flags.Int("scale", def.UpsampleRatio, "Upsample ratio, used with --upsample")
	flags.Bool("mean-shift", false, "Subtract and restore the RGB mean")
	flags.Float32("rgb-range", def.RGBRange, "Pixel value range")
	flags.Int64("seed", def.Seed, "Seed for parameter initialization")
}

// modelConfig reads the model flags on top of han.DefaultConfig.
func modelConfig(cmd *cobra.Command) (han.Config, error) {
	cfg := han.DefaultConfig()
	flags := cmd.Flags()

	var err error
	get := func(f func(string) (int, error), name string, dst *int) {
		if err == nil {
			*dst, err = f(name)
		}
	}
	get(flags.GetInt, "groups", &cfg.NumResGroups)
	get(flags.GetInt, "blocks", &cfg.NumResBlocks)
	get(flags.GetInt, "feats", &cfg.NumFeats)
	get(flags.GetInt, "reduction", &cfg.Reduction)
	get(flags.GetInt, "scale", &cfg.UpsampleRatio)
	if err != nil {
		return cfg, err
	}

	if cfg.ResScale, err = flags.GetFloat32("res-scale"); err != nil {
		return cfg, err
	}
	if cfg.RGBRange, err = flags.GetFloat32("rgb-range"); err != nil {
		return cfg, err
	}
	if cfg.Upsample, err = flags.GetBool("upsample"); err != nil {
		return cfg, err
	}
	if cfg.MeanShift, err = flags.GetBool("mean-shift"); err != nil {
		return cfg, err
	}
	if cfg.Seed, err = flags.GetInt64("seed"); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func newBackend() *cpu.CPUBackend {
	return cpu.NewWithConfig(parallel.WithWorkers(envconfig.Workers()))
}
