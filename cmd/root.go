package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cip/internal/config"
	"cip/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "cip [flags] PATHS",
	Short: "cip - batch resize, compress, convert and rename photos",
	Long: `cip walks directories to a given depth and processes the JPEG and PNG files it finds.

PATHS is one directory or a list of directories and image files separated by '*',
for example "album1*album2/img.png".`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(flagVerbose)
	},
	RunE: runProcess,
}

var (
	flagDepth      int
	flagResize     bool
	flagConvert    bool
	flagCompress   bool
	flagUpdate     bool
	flagSide       int
	flagErase      bool
	flagQuality    int
	flagKeepExif   bool
	flagConfigPath string
	flagVerbose    bool
)

// legacyShorthands maps multi-letter short options onto their long form.
var legacyShorthands = map[string]string{
	"-co": "--compress",
}

func Execute() {
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults := config.Default()

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&flagDepth, "depth", "d", "directory levels to search below each path (repeat or use --depth=N)")
	flags.BoolVarP(&flagResize, "resize", "r", false, "halve images larger than 1MB whose shorter side exceeds --side")
	flags.BoolVarP(&flagConvert, "convert", "c", false, "convert PNG images to JPEG")
	flags.BoolVar(&flagCompress, "compress", false, "re-encode JPEG images at --quality (ignored with --resize; -co also accepted)")
	flags.BoolVarP(&flagUpdate, "update", "u", false, "prefix file names with their folder name")
	flags.IntVarP(&flagSide, "side", "s", defaults.Side, "minimal shorter side, in pixels, of an image to be resized")
	flags.BoolVarP(&flagErase, "erase", "e", false, "delete the PNG after a successful conversion")
	flags.IntVarP(&flagQuality, "quality", "q", defaults.Quality, "JPEG quality, 95 or 100")
	flags.BoolVar(&flagKeepExif, "keep-exif", false, "copy EXIF metadata into re-encoded JPEG files")
	flags.StringVar(&flagConfigPath, "config", "", "YAML file with default options")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().BoolVarP(&flagProgress, "progress", "p", false, "show a live progress view")

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

// normalizeArgs rewrites legacy shorthands before cobra parses them.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if long, ok := legacyShorthands[arg]; ok {
			arg = long
		}
		out = append(out, arg)
	}
	return out
}

// buildConfig layers defaults, the optional config file, the environment and
// explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if flagConfigPath != "" {
		if err := config.LoadFile(&cfg, flagConfigPath); err != nil {
			return cfg, err
		}
	}
	if err := config.LoadEnv(&cfg); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("depth") {
		cfg.Depth = flagDepth
	}
	if flags.Changed("resize") {
		cfg.Resize = flagResize
	}
	if flags.Changed("convert") {
		cfg.Convert = flagConvert
	}
	if flags.Changed("compress") {
		cfg.Compress = flagCompress
	}
	if flags.Changed("update") {
		cfg.Update = flagUpdate
	}
	if flags.Changed("side") {
		cfg.Side = flagSide
	}
	if flags.Changed("erase") {
		cfg.Erase = flagErase
	}
	if flags.Changed("quality") {
		cfg.Quality = flagQuality
	}
	if flags.Changed("keep-exif") {
		cfg.KeepExif = flagKeepExif
	}
	if len(args) > 0 {
		cfg.Paths = args[0]
	}

	return cfg, cfg.Validate()
}
