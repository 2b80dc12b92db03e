package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pverdier/veracite/internal/llm"
	"github.com/pverdier/veracite/internal/model"
	"github.com/pverdier/veracite/internal/pipeline"
	"github.com/pverdier/veracite/internal/store"
)

var (
	checkDBPath    string
	checkNoContext bool
	checkJSON      bool
	checkImprove   bool
	checkTimeout   time.Duration
	llmProvider    string
	llmModel       string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check one document for unverifiable claims",
	Long: `Check scans a document for suspect claims, corroborates each one
against the knowledge base and prints the verification result. Use "-" to
read the document from stdin.

Example:
  veracite check report.txt
  veracite check report.txt --db corpus.db --json
  cat draft.md | veracite check - --no-context
  veracite check report.txt --improve --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkDBPath, "db", "", "knowledge base path (default from config)")
	checkCmd.Flags().BoolVar(&checkNoContext, "no-context", false, "skip knowledge base retrieval entirely")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the full result as JSON")
	checkCmd.Flags().BoolVar(&checkImprove, "improve", false, "reformulate the corrected text with the configured LLM")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 30*time.Second, "overall check timeout")

	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for --improve (openai)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name for --improve")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger()

	content, err := readDocument(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	var searcher store.Searcher
	if !checkNoContext {
		repo, err := openRepo(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()
		searcher = repo
	}

	checker := pipeline.NewChecker(searcher, logger)

	var kctx *model.KnowledgeContext
	if checkNoContext {
		kctx = &model.KnowledgeContext{RetrievalDisabled: true}
	}
	result := checker.Check(ctx, content, kctx)

	improved := ""
	if checkImprove && result.HasHallucinations {
		improved, err = reformulate(ctx, cfg, content, result)
		if err != nil {
			logger.Warn("reformulation failed, keeping template corrections", "error", err)
			improved = ""
		}
	}

	if checkJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result, improved)
	if result.HasHallucinations {
		return fmt.Errorf("unverifiable claims found (confidence %.2f)", result.ConfidenceScore)
	}
	return nil
}

// readDocument reads the file argument, with "-" meaning stdin
func readDocument(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

// openRepo opens the configured knowledge base
func openRepo(cfg *model.Config) (store.Repository, error) {
	path := cfg.Store.Path
	if checkDBPath != "" {
		path = checkDBPath
	}
	repo, err := store.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}
	return repo, nil
}

// reformulate runs the optional LLM pass over the corrected text
func reformulate(ctx context.Context, cfg *model.Config, original string, result *model.CheckResult) (string, error) {
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if cfg.LLM.Provider == "" {
		return "", fmt.Errorf("no LLM provider configured (use --llm-provider)")
	}
	if cfg.LLM.APIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return "", fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		return "", fmt.Errorf("LLM provider %q is not configured", cfg.LLM.Provider)
	}

	resp, err := provider.Reword(ctx, llm.RewordRequest{
		Original:  original,
		Corrected: result.CorrectedContent,
		Facts:     result.VerifiedFacts,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func printResult(result *model.CheckResult, improved string) {
	fmt.Printf("Confidence: %.2f\n", result.ConfidenceScore)

	if len(result.SuspectSegments) > 0 {
		fmt.Printf("\nSuspect segments (%d):\n", len(result.SuspectSegments))
		for _, seg := range result.SuspectSegments {
			mark := "✗"
			note := "unverified"
			if seg.Verified {
				mark = "✓"
				note = seg.VerificationSource
			}
			fmt.Printf("  %s [%s] %q (%s)\n", mark, seg.Pattern, seg.Text, note)
		}
	}

	if len(result.UncertainSegments) > 0 {
		fmt.Printf("\nUncertainty markers (%d):\n", len(result.UncertainSegments))
		for _, seg := range result.UncertainSegments {
			fmt.Printf("  ~ %q\n", seg.Text)
		}
	}

	if result.HasHallucinations {
		fmt.Printf("\nCorrected:\n%s\n", result.CorrectedContent)
		if improved != "" {
			fmt.Printf("\nReformulated:\n%s\n", improved)
		}
	} else {
		fmt.Println("\nNo unverifiable claims found.")
	}
}
