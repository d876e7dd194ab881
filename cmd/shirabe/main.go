// Package main is the shirabe CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/builder"
	"github.com/hyperjump/shirabe/internal/cli"
	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/extract"
	"github.com/hyperjump/shirabe/internal/fetch"
	"github.com/hyperjump/shirabe/internal/normalize"
	"github.com/hyperjump/shirabe/internal/server"
	"github.com/hyperjump/shirabe/internal/store"
	"github.com/hyperjump/shirabe/internal/watcher"
	"github.com/hyperjump/shirabe/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/shirabe/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "build":
		runBuild()
	case "search":
		runSearch()
	case "serve":
		runServe()
	case "fetch":
		runFetch()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("shirabe version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shirabe - corpus embedding store and semantic search

Usage:
  shirabe build  [-config path]                    Build the store from configured corpora
  shirabe search [-config path] [flags] <query>    Search a built store
  shirabe serve  [-config path]                    Serve the search API over HTTP
  shirabe fetch  [-config path]                    Download configured corpus files
  shirabe watch  [-config path]                    Rebuild corpora when source dirs change
  shirabe version                                  Print version

Search flags:
  -top-k N       candidates ranked per corpus (default from config)
  -min-length N  minimum words in a returned result (default from config)
  -format F      output format: text or json (default text)`)
}

func setup(args []string) (*config.Config, *zap.Logger) {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args[1:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolvedPath))
	return cfg, logger
}

// newEncoder returns the ONNX encoder when the model is usable, otherwise the
// deterministic hash encoder. The fallback keeps build/search working in
// environments without onnxruntime, at the cost of semantic quality.
func newEncoder(cfg *config.Config, logger *zap.Logger) embedding.Encoder {
	enc, err := embedding.NewONNXEncoder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("ONNX encoder unavailable, using hash encoder", zap.Error(err))
		return embedding.NewHashEncoder(cfg.Embedding.Dimensions)
	}
	return enc
}

func newBuilder(cfg *config.Config, enc embedding.Encoder, logger *zap.Logger) (*builder.Builder, error) {
	opts := builder.Options{
		Resolution:          builder.Resolution(cfg.Build.Resolution),
		Preprocess:          cfg.Build.PreprocessOrDefault(),
		NormalizeEmbeddings: cfg.Build.NormalizeEmbeddingsOrDefault(),
		NormalizeOptions:    normalize.DefaultOptions(),
	}
	opts.NormalizeOptions.Lowercase = cfg.Build.Lowercase
	return builder.New(extract.NewPDFOpener(), enc, opts, builder.WithLogger(logger))
}

// corpusFiles resolves every configured corpus to its file list.
func corpusFiles(cfg *config.Config, logger *zap.Logger) []builder.CorpusFiles {
	corpora := make([]builder.CorpusFiles, 0, len(cfg.Corpora))
	for _, c := range cfg.Corpora {
		paths, err := c.ResolvePaths()
		if err != nil {
			logger.Error("cannot resolve corpus paths, skipping corpus",
				zap.String("corpus", c.Name), zap.Error(err))
			continue
		}
		corpora = append(corpora, builder.CorpusFiles{Name: c.Name, Paths: paths})
	}
	return corpora
}

func buildAndSave(ctx context.Context, cfg *config.Config, enc embedding.Encoder, logger *zap.Logger) (*store.Store, error) {
	b, err := newBuilder(cfg, enc, logger)
	if err != nil {
		return nil, err
	}
	s, err := b.Build(ctx, corpusFiles(cfg, logger))
	if err != nil {
		return nil, err
	}
	if err := s.Save(cfg.StorePath); err != nil {
		return nil, err
	}
	logger.Info("store saved",
		zap.String("path", cfg.StorePath),
		zap.Int("corpora", len(s.Corpora)),
		zap.Int("entries", s.Size()),
	)
	return s, nil
}

func runBuild() {
	cfg, logger := setup(os.Args[1:])
	defer logger.Sync()
	enc := newEncoder(cfg, logger)
	defer enc.Close()

	if _, err := buildAndSave(context.Background(), cfg, enc, logger); err != nil {
		logger.Error("build failed", zap.Error(err))
		os.Exit(1)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	topK := fs.Int("top-k", 0, "candidates ranked per corpus (0 = config default)")
	minLength := fs.Int("min-length", 0, "minimum words in a result (0 = config default)")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Println("Usage: shirabe search [flags] <query>")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *topK == 0 {
		*topK = cfg.Search.TopK
	}
	if *minLength == 0 {
		*minLength = cfg.Search.MinLength
	}

	s, err := store.Load(cfg.StorePath)
	if err != nil {
		fmt.Printf("Failed to load store: %v\n", err)
		os.Exit(1)
	}
	enc := newEncoder(cfg, logger)
	defer enc.Close()

	results, err := s.Search(context.Background(), query, enc, *topK, *minLength)
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, results, cli.OutputFormat(*format)); err != nil {
		fmt.Printf("Failed to write results: %v\n", err)
		os.Exit(1)
	}
}

func runServe() {
	cfg, logger := setup(os.Args[1:])
	defer logger.Sync()

	s, err := store.Load(cfg.StorePath)
	if err != nil {
		logger.Error("failed to load store; run 'shirabe build' first", zap.Error(err))
		os.Exit(1)
	}
	enc := newEncoder(cfg, logger)
	defer enc.Close()

	srv := server.NewServer(s, enc, cfg, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}

func runFetch() {
	cfg, logger := setup(os.Args[1:])
	defer logger.Sync()

	corpora := make([]fetch.CorpusURLs, 0, len(cfg.Fetch.Corpora))
	for _, c := range cfg.Fetch.Corpora {
		corpora = append(corpora, fetch.CorpusURLs{Name: c.Name, URLs: c.URLs})
	}
	f := fetch.New(nil, logger)
	if err := f.Fetch(context.Background(), corpora, cfg.Fetch.Dir); err != nil {
		logger.Error("fetch failed", zap.Error(err))
		os.Exit(1)
	}
}

// corpusDirs maps each configured corpus directory to its corpus name.
func corpusDirs(cfg *config.Config) map[string]string {
	dirs := make(map[string]string)
	for _, c := range cfg.Corpora {
		for _, dir := range c.Dirs {
			dirs[dir] = c.Name
		}
	}
	return dirs
}

func runWatch() {
	cfg, logger := setup(os.Args[1:])
	defer logger.Sync()
	enc := newEncoder(cfg, logger)
	defer enc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := buildAndSave(ctx, cfg, enc, logger); err != nil {
		logger.Error("initial build failed", zap.Error(err))
		os.Exit(1)
	}

	dirs := corpusDirs(cfg)
	if len(dirs) == 0 {
		logger.Error("no corpus dirs configured; nothing to watch")
		os.Exit(1)
	}
	w := watcher.New(dirs, func(corpus string) {
		logger.Info("corpus changed, rebuilding store", zap.String("corpus", corpus))
		if _, err := buildAndSave(ctx, cfg, enc, logger); err != nil {
			logger.Error("rebuild failed", zap.String("corpus", corpus), zap.Error(err))
		}
	}, logger)
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start watcher", zap.Error(err))
		os.Exit(1)
	}
	defer w.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("stopping watch", zap.String("signal", sig.String()))
}
