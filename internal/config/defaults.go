package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.StorePath == "" {
		cfg.StorePath = "/usr/local/var/shirabe/data/store.json"
	}
	if cfg.Build.Resolution == "" {
		cfg.Build.Resolution = "block"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/shirabe/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 32
	}
	if cfg.Search.MinLength == 0 {
		cfg.Search.MinLength = 15
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Fetch.Dir == "" {
		cfg.Fetch.Dir = "/usr/local/var/shirabe/data/downloads"
	}
}
