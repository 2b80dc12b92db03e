package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pverdier/veracite/internal/pipeline"
	"github.com/pverdier/veracite/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	storeQPS     float64
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Check multiple documents from a list file in parallel",
	Long: `Batch checks multiple documents concurrently:
- Read document paths from the list file (one per line, # comments)
- Check documents in parallel with a configurable worker count
- Retrieval queries against the knowledge base are rate limited
- Write one JSON report per document

Example:
  veracite batch docs.list
  veracite batch docs.list --concurrency 8 --output-dir ./reports
  veracite batch docs.list --db corpus.db --store-qps 50`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./veracite-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&checkDBPath, "db", "", "knowledge base path (default from config)")
	batchCmd.Flags().Float64Var(&storeQPS, "store-qps", 0, "max knowledge base queries per second (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger()

	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if storeQPS > 0 {
		cfg.Concurrency.StoreQueriesPerSec = storeQPS
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	repo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	checker := pipeline.NewChecker(repo, logger)
	processor := worker.NewBatchProcessor(checker, cfg.Concurrency.Workers, cfg.Concurrency.StoreQueriesPerSec)

	reports, err := processor.ProcessList(ctx, args[0])
	if err != nil {
		return fmt.Errorf("process list: %w", err)
	}

	successCount := 0
	flaggedCount := 0
	failureCount := 0

	for _, report := range reports {
		if report.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", report.Path, report.Error)
			continue
		}

		outPath := filepath.Join(outputDir, reportName(report.Path))
		if err := writeReport(outPath, report); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", report.Path, err)
			continue
		}

		successCount++
		if report.Result.HasHallucinations {
			flaggedCount++
			fmt.Fprintf(os.Stderr, "! %s (confidence %.2f)\n", report.Path, report.Result.ConfidenceScore)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ %s\n", report.Path)
		}
	}

	fmt.Fprintf(os.Stderr, "\nChecked %d documents: %d clean, %d flagged, %d failed\n",
		len(reports), successCount-flaggedCount, flaggedCount, failureCount)
	fmt.Fprintf(os.Stderr, "Reports written to %s\n", outputDir)

	if failureCount > 0 {
		return fmt.Errorf("%d documents failed", failureCount)
	}
	return nil
}

// reportName derives the report file name from the document path
func reportName(docPath string) string {
	base := filepath.Base(docPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".json"
}

func writeReport(path string, report *worker.CheckReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report.Result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
