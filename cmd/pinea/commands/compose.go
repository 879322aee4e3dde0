package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pwmikolajek/pinea/internal/ingest"
	"github.com/pwmikolajek/pinea/internal/session"
)

var composeOutput string

var composeCmd = &cobra.Command{
	Use:   "compose [images...]",
	Short: "Assemble images into a single PDF, one full-bleed page per image",
	Long: `Compose reads the given JPEG and PNG images and assembles them, in
argument order, into one PDF. Every page is sized exactly to its image's
pixel dimensions: no margins, no scaling. Files that are not JPEG or PNG,
or that exceed the size limit, are skipped and reported individually.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVarP(&composeOutput, "output", "o", "", "output PDF path (default pinea-<timestamp>.pdf)")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := session.New()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer sess.Close()

	batch := make([]ingest.File, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		batch = append(batch, ingest.File{Name: filepath.Base(path), Data: data})
	}

	res := sess.Ingest(ctx, batch)
	for _, rej := range res.Rejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %s\n", rej.Filename, rej.Reason)
	}
	if len(res.Accepted) == 0 {
		return fmt.Errorf("no usable images among %d file(s)", len(args))
	}

	doc, err := sess.ComposeDocument(ctx)
	if err != nil {
		return err
	}

	output := composeOutput
	if output == "" {
		output = fmt.Sprintf("pinea-%s.pdf", time.Now().Format("20060102-150405"))
	}
	if err := doc.WriteToFile(output, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d page(s), %d bytes\n", output, doc.PageCount(), doc.Len())
	return nil
}
