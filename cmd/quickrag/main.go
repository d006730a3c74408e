package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/statico/quickrag/internal/batch"
	"github.com/statico/quickrag/internal/chunker"
	"github.com/statico/quickrag/internal/config"
	"github.com/statico/quickrag/internal/embedder"
	"github.com/statico/quickrag/internal/indexer"
	"github.com/statico/quickrag/internal/searcher"
	"github.com/statico/quickrag/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if os.Args[1] == "--version" || os.Args[1] == "version" {
		fmt.Printf("quickrag\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		fmt.Printf("Vector Extension: %v\n", storage.VectorExtensionAvailable)
		os.Exit(0)
	}

	// Logs go to stderr, results to stdout
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "index":
		err = runIndex(ctx, logger, os.Args[2:])
	case "search":
		err = runSearch(ctx, os.Args[2:])
	case "status":
		err = runStatus(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: quickrag <command> [flags]

Commands:
  index    Index a directory of text files
  search   Query the index by semantic similarity
  status   Show index statistics
  version  Show build information

Run "quickrag <command> -h" for command flags.
`)
}

func runIndex(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	dir := fs.String("dir", "", "directory to index (overrides QUICKRAG_CORPUS_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *dir != "" {
		cfg.CorpusDir = *dir
	}
	if cfg.CorpusDir == "" {
		return fmt.Errorf("no corpus directory: pass -dir or set QUICKRAG_CORPUS_DIR")
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return err
	}
	defer func() { _ = emb.Close() }()
	logger.Info("embedding provider", "provider", emb.Provider(), "model", emb.Model(), "dimension", emb.Dimension())

	var limiter *rate.Limiter
	if cfg.EmbedRatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.EmbedRatePerSec), 1)
	}

	idx := indexer.New(store, emb, logger)
	report, err := idx.Run(ctx, indexer.Config{
		Root:       cfg.CorpusDir,
		Extensions: cfg.Extensions,
		Strategy:   cfg.Strategy,
		ChunkOptions: chunker.Options{
			TargetTokens:  cfg.TargetTokens,
			OverlapTokens: cfg.OverlapTokens,
			MinUnitChars:  cfg.MinUnitChars,
		},
		BatchLimits: batch.Limits{
			MaxUnits:  cfg.BatchMaxUnits,
			MaxChars:  cfg.BatchMaxChars,
			MaxTokens: cfg.BatchMaxTokens,
		},
		Workers:    cfg.Workers,
		RetryDepth: cfg.RetryDepth,
		Limiter:    limiter,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Run %s: %s\n", report.RunID, report.State)
	fmt.Printf("  Files: %d scanned, %d indexed, %d failed, %d deleted\n",
		report.FilesScanned, report.FilesIndexed, report.FilesFailed, report.FilesDeleted)
	fmt.Printf("  Units: %d written, %d skipped as duplicates, %d batches\n",
		report.UnitsWritten, report.UnitsSkipped, report.Batches)
	fmt.Printf("  Took %s\n", report.Duration.Round(time.Millisecond))
	return nil
}

func runSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	limit := fs.Int("limit", searcher.DefaultLimit, "maximum number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("no query: usage is quickrag search [flags] <query>")
	}
	query := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return err
	}
	defer func() { _ = emb.Close() }()

	s := searcher.New(store, emb)
	resp, err := s.Search(ctx, searcher.Request{Query: query, Limit: *limit})
	if err != nil {
		return err
	}

	if len(resp.Results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range resp.Results {
		fmt.Printf("%d. %s:%d-%d (score %.3f)\n", i+1, r.Path, r.StartLine, r.EndLine, r.Score)
		fmt.Printf("   %s\n", firstLine(r.Content))
	}
	return nil
}

func runStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	files, err := store.CountFiles(ctx)
	if err != nil {
		return err
	}
	units, err := store.CountUnits(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", cfg.DBPath)
	fmt.Printf("Files indexed: %d\n", files)
	fmt.Printf("Units stored: %d\n", units)
	fmt.Printf("Embedding provider: %s\n", embedder.DetectProvider())
	return nil
}

// firstLine truncates content to its first line for display
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			s = s[:i]
			break
		}
	}
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
