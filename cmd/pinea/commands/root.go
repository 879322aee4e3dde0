package commands

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pinea",
	Short: "Document utilities: assemble images into PDFs and extract PDF pages as images",
	Long: `Pinea bundles two mirror pipelines: compose turns an ordered set of
JPEG/PNG images into a single PDF with one naturally-sized page per
image, and extract renders every page of a PDF into JPEG images at a
chosen scale and quality. Finished documents can be published to cloud
storage with publish.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if !verbose {
			level = slog.LevelWarn
		}
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
	SilenceUsage: true,
}

func init() {
	// Missing .env is fine; environment variables may be set directly.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
