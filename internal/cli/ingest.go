package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pverdier/veracite/internal/store"
)

var (
	ingestDate    string
	ingestTimeout time.Duration
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-dir>...",
	Short: "Load documents into the knowledge base",
	Long: `Ingest loads corpus documents into the knowledge base. Plain text
and markdown are stored as-is; HTML is reduced to its visible text first.
Files become sections titled after the file name; with --date each file
becomes a dated journal entry instead. Directories are ingested
non-recursively.

Example:
  veracite ingest notes/ --db corpus.db
  veracite ingest meeting.html --date 2026-08-24`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&checkDBPath, "db", "", "knowledge base path (default from config)")
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "store files as journal entries dated with this value")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 2*time.Minute, "overall ingest timeout")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	repo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	ingester := store.NewIngester(repo)

	total := 0
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("stat %s: %w", arg, err)
		}

		if info.IsDir() {
			if ingestDate != "" {
				return fmt.Errorf("--date only applies to files, not directories")
			}
			n, err := ingester.IngestDir(ctx, arg)
			total += n
			if err != nil {
				return err
			}
			continue
		}

		if _, err := ingester.IngestFile(ctx, arg, ingestDate); err != nil {
			return err
		}
		total++
	}

	fmt.Printf("✓ Ingested %d documents\n", total)
	return nil
}
