// Package config provides configuration loading and structs for shirabe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/shirabe/internal/docintel"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	StorePath string          `yaml:"store_path"`
	Build     BuildConfig     `yaml:"build"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
	Corpora   []CorpusConfig  `yaml:"corpora"`
	Fetch     FetchConfig     `yaml:"fetch"`
	DocIntel  docintel.Config `yaml:"docintel"`
}

// BuildConfig holds corpus build settings.
type BuildConfig struct {
	// Resolution is "block" or "page".
	Resolution string `yaml:"resolution"`
	// Preprocess normalizes text before encoding; defaults to true when unset.
	Preprocess *bool `yaml:"preprocess"`
	// NormalizeEmbeddings unit-normalizes embeddings; defaults to true when unset.
	NormalizeEmbeddings *bool `yaml:"normalize_embeddings"`
	// Lowercase folds text to lowercase during normalization.
	Lowercase bool `yaml:"lowercase"`
}

// PreprocessOrDefault returns whether to normalize text; defaults to true.
func (b *BuildConfig) PreprocessOrDefault() bool {
	if b.Preprocess != nil {
		return *b.Preprocess
	}
	return true
}

// NormalizeEmbeddingsOrDefault returns whether to unit-normalize embeddings; defaults to true.
func (b *BuildConfig) NormalizeEmbeddingsOrDefault() bool {
	if b.NormalizeEmbeddings != nil {
		return *b.NormalizeEmbeddings
	}
	return true
}

// EmbeddingConfig holds ONNX encoder settings.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	TopK      int `yaml:"top_k"`
	MinLength int `yaml:"min_length"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig names a corpus and its source files. Dirs are scanned for
// PDF files at build time; Paths are used as given.
type CorpusConfig struct {
	Name  string   `yaml:"name"`
	Paths []string `yaml:"paths"`
	Dirs  []string `yaml:"dirs"`
}

// ResolvePaths returns the corpus's file paths: explicit paths first, then all
// *.pdf files found in each configured dir, sorted for deterministic order.
func (c *CorpusConfig) ResolvePaths() ([]string, error) {
	paths := append([]string(nil), c.Paths...)
	for _, dir := range c.Dirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
		if err != nil {
			return nil, fmt.Errorf("scan dir %s: %w", dir, err)
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}

// FetchConfig holds download settings.
type FetchConfig struct {
	Dir     string              `yaml:"dir"`
	Corpora []FetchCorpusConfig `yaml:"corpora"`
}

// FetchCorpusConfig names a corpus and the URLs to download for it.
type FetchCorpusConfig struct {
	Name string   `yaml:"name"`
	URLs []string `yaml:"urls"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.StorePath = expandPath(cfg.StorePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Fetch.Dir = expandPath(cfg.Fetch.Dir, configDir)
	for i := range cfg.Corpora {
		for j := range cfg.Corpora[i].Paths {
			cfg.Corpora[i].Paths[j] = expandPath(cfg.Corpora[i].Paths[j], configDir)
		}
		for j := range cfg.Corpora[i].Dirs {
			cfg.Corpora[i].Dirs[j] = expandPath(cfg.Corpora[i].Dirs[j], configDir)
		}
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
