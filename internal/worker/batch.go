package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pverdier/veracite/internal/model"
)

// storeKey is the limiter key shared by every document check; all checks
// compete for the same knowledge store.
const storeKey = "store"

// Checker runs one verification pass over a document
type Checker interface {
	Check(ctx context.Context, content string, kctx *model.KnowledgeContext) *model.CheckResult
}

// CheckJob verifies one document file
type CheckJob struct {
	Path    string
	Checker Checker
	Limiter *Limiter
}

// Execute reads the document and runs the verification pass
func (j *CheckJob) Execute(ctx context.Context) Result {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return &CheckReport{Path: j.Path, Error: fmt.Errorf("read document: %w", err)}
	}

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, storeKey); err != nil {
			return &CheckReport{Path: j.Path, Error: err}
		}
	}

	return &CheckReport{
		Path:   j.Path,
		Result: j.Checker.Check(ctx, string(data), nil),
	}
}

// CheckReport is the result of checking one document
type CheckReport struct {
	Path   string
	Result *model.CheckResult
	Error  error
}

// GetError returns the error from the check, if any
func (r *CheckReport) GetError() error {
	return r.Error
}

// BatchProcessor checks multiple documents concurrently
type BatchProcessor struct {
	checker     Checker
	limiter     *Limiter
	concurrency int
}

// NewBatchProcessor creates a batch processor. queriesPerSec <= 0 disables
// rate limiting.
func NewBatchProcessor(checker Checker, concurrency int, queriesPerSec float64) *BatchProcessor {
	var limiter *Limiter
	if queriesPerSec > 0 {
		limiter = NewLimiter(queriesPerSec, int(queriesPerSec))
	}
	return &BatchProcessor{
		checker:     checker,
		limiter:     limiter,
		concurrency: concurrency,
	}
}

// ProcessPaths checks the given document files concurrently. Canceling
// ctx aborts in-flight checks; reports for aborted documents may be
// dropped.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*CheckReport {
	if len(paths) == 0 {
		return []*CheckReport{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&CheckJob{
			Path:    path,
			Checker: b.checker,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	reports := make([]*CheckReport, len(results))
	for i, result := range results {
		reports[i] = result.(*CheckReport)
	}

	return reports
}

// ProcessList reads document paths from a list file and checks them
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*CheckReport, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file, one per line.
// Blank lines and #-comments are skipped; duplicates are dropped.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
