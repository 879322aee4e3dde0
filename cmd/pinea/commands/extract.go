package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pwmikolajek/pinea/internal/bundle"
	"github.com/pwmikolajek/pinea/internal/domain"
	"github.com/pwmikolajek/pinea/internal/extractor"
	"github.com/pwmikolajek/pinea/internal/session"
)

var (
	extractScale   float64
	extractQuality float64
	extractOutDir  string
	extractZip     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [document.pdf]",
	Short: "Render every page of a PDF into JPEG images",
	Long: `Extract renders each page of the given PDF into a JPEG image, in page
order, at the chosen scale and quality. Images are written either as
individual files or, with --zip, as a single archive with zero-padded
page names.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Float64Var(&extractScale, "scale", extractor.DefaultScale, "render scale factor (1.0 = natural page size)")
	extractCmd.Flags().Float64Var(&extractQuality, "quality", extractor.DefaultQuality, "JPEG quality in (0,1]")
	extractCmd.Flags().StringVarP(&extractOutDir, "output", "o", ".", "output directory (or archive directory with --zip)")
	extractCmd.Flags().BoolVar(&extractZip, "zip", false, "bundle all pages into a single zip archive")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input := args[0]

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	sess, err := session.New()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer sess.Close()

	pages, err := sess.ExtractPages(ctx, data, extractor.Options{
		Scale:   extractScale,
		Quality: extractQuality,
	})
	if err != nil {
		return err
	}

	baseName := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	if extractZip {
		archive, err := bundle.Pages(baseName, pages)
		if err != nil {
			return err
		}
		archivePath := filepath.Join(extractOutDir, bundle.ArchiveName(baseName))
		if err := os.WriteFile(archivePath, archive, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", archivePath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d page(s), %d bytes\n", archivePath, len(pages), len(archive))
		return nil
	}

	for _, p := range pages {
		path := filepath.Join(extractOutDir, bundle.PageEntryName(baseName, p.PageNumber))
		if err := os.WriteFile(path, p.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d page(s), %d bytes total\n", len(pages), domain.TotalSize(pages))
	return nil
}
