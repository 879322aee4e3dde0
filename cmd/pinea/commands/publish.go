package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/spf13/cobra"

	"github.com/pwmikolajek/pinea/internal/gcp"
	"github.com/pwmikolajek/pinea/internal/library"
)

var publishCmd = &cobra.Command{
	Use:   "publish [document.pdf]",
	Short: "Upload a finished PDF to cloud storage and record its metadata",
	Long: `Publish uploads the given PDF to the configured storage bucket and adds
a metadata record for it. A document that was already published (same
content hash) is not uploaded again.

Required environment (or .env): PROJECT_ID, DOCUMENTS_BUCKET.
Optional: FIRESTORE_COLLECTION (default "documents").`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

var publishedCmd = &cobra.Command{
	Use:   "published",
	Short: "List published documents",
	Args:  cobra.NoArgs,
	RunE:  runPublished,
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish [id]",
	Short: "Remove a published document and its metadata record",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnpublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(publishedCmd)
	rootCmd.AddCommand(unpublishCmd)
}

func newPublisher(ctx context.Context) (*library.Publisher, func(), error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	bucket := gcp.GetEnv("DOCUMENTS_BUCKET", "")
	if projectID == "" || bucket == "" {
		return nil, nil, fmt.Errorf("PROJECT_ID and DOCUMENTS_BUCKET must be set")
	}

	blobs, err := gcp.NewBlobBucket(ctx, bucket)
	if err != nil {
		return nil, nil, err
	}
	records, err := gcp.NewDocumentRecords(ctx, projectID, gcp.GetEnv("FIRESTORE_COLLECTION", "documents"))
	if err != nil {
		blobs.Close()
		return nil, nil, err
	}
	cleanup := func() {
		records.Close()
		blobs.Close()
	}
	return library.NewPublisher(blobs, records), cleanup, nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input := args[0]

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}
	pageCount, err := api.PageCountFile(input)
	if err != nil {
		return fmt.Errorf("%s does not look like a readable PDF: %w", input, err)
	}

	publisher, cleanup, err := newPublisher(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	stored, err := publisher.Publish(ctx, filepath.Base(input), data, pageCount)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", stored.ID, stored.Record.DownloadURL)
	return nil
}

func runPublished(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	publisher, cleanup, err := newPublisher(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	docs, err := publisher.List(ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d page(s)\t%s\n",
			d.ID, d.Record.OriginalFilename, d.Record.PageCount, d.Record.DownloadURL)
	}
	return nil
}

func runUnpublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	publisher, cleanup, err := newPublisher(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return publisher.Unpublish(ctx, args[0])
}
