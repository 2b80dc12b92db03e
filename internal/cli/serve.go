package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pverdier/veracite/internal/api"
	"github.com/pverdier/veracite/internal/llm"
	"github.com/pverdier/veracite/internal/pipeline"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verification API over HTTP",
	Long: `Serve exposes the verification pipeline as an HTTP API:

  POST /verify           check content for unverifiable claims
  GET  /status           operational counters
  POST /clear-cache      drop all cached verdicts
  POST /improve-content  check, correct and optionally reformulate

Example:
  veracite serve
  veracite serve --addr :9000 --db corpus.db`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&checkDBPath, "db", "", "knowledge base path (default from config)")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger()

	repo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	reformulator, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	checker := pipeline.NewChecker(repo, logger)
	server := api.NewServer(checker, repo, reformulator, logger)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	return server.Run(addr)
}
