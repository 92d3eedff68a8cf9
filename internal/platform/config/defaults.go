package config

import "time"

// DefaultConfig returns the built-in configuration. Values mirror the
// production deployment; anything secret stays out of this file.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8090,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "./web",
		},
		Vision: VisionConfig{
			Model: ModelConfig{
				BaseURL:       "http://127.0.0.1:8765",
				ModelVersion:  "clip-vit-base-patch32",
				Dimensions:    512,
				Timeout:       Duration(30 * time.Second),
				WarmupTimeout: Duration(120 * time.Second),
			},
			PrototypesPath:   "data/vision/prototypes.json",
			DefaultDeckStyle: "rws-1909",
			Match: MatchConfig{
				TopK:          5,
				MinConfidence: 0.22,
				MaxImages:     5,
				EmbedWorkers:  3,
			},
			Proof: ProofConfig{
				TTL: Duration(5 * time.Minute),
				Replay: ReplayConfig{
					Enabled:    false,
					Driver:     "memory",
					GCInterval: Duration(time.Minute),
				},
			},
			Upload: SecurityConfig{
				MaxFileSize:    5 * 1024 * 1024,
				MaxPixels:      16777216,
				MaxWidth:       4096,
				MaxHeight:      4096,
				AllowedFormats: []string{"jpeg", "jpg", "png", "webp", "gif", "bmp"},
			},
			Audit: AuditConfig{
				Enabled: true,
				DSN:     "data/vision/audit.db",
			},
		},
		Evaluation: EvaluationConfig{
			CorpusDir:                 "data/vision/corpus",
			OutputDir:                 "data/vision/eval",
			MinAccuracy:               0.85,
			MinHighConfidenceAccuracy: 0.95,
			ConfidenceThreshold:       0.25,
		},
	}
}
