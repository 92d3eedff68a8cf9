package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from yaml strings like
// "5m" or "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std converts to the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Web        WebConfig        `yaml:"web" mapstructure:"web"`
	Vision     VisionConfig     `yaml:"vision" mapstructure:"vision"`
	Evaluation EvaluationConfig `yaml:"evaluation" mapstructure:"evaluation"`
}

type ServerConfig struct {
	IP   string `yaml:"ip" mapstructure:"ip"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type LogConfig struct {
	Level  string `yaml:"log_level" mapstructure:"log_level"`
	Dir    string `yaml:"log_dir" mapstructure:"log_dir"`
	File   string `yaml:"log_file" mapstructure:"log_file"`
	Format string `yaml:"log_format" mapstructure:"log_format"`
}

type WebConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	StaticDir string `yaml:"static_dir" mapstructure:"static_dir"`
}

// VisionConfig groups everything the vision proof pipeline needs.
type VisionConfig struct {
	Model            ModelConfig    `yaml:"model" mapstructure:"model"`
	PrototypesPath   string         `yaml:"prototypes_path" mapstructure:"prototypes_path"`
	DefaultDeckStyle string         `yaml:"default_deck_style" mapstructure:"default_deck_style"`
	Match            MatchConfig    `yaml:"match" mapstructure:"match"`
	Proof            ProofConfig    `yaml:"proof" mapstructure:"proof"`
	Upload           SecurityConfig `yaml:"upload" mapstructure:"upload"`
	Audit            AuditConfig    `yaml:"audit" mapstructure:"audit"`
}

// ModelConfig points at the embedding model sidecar.
type ModelConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	ModelVersion  string        `yaml:"model_version" mapstructure:"model_version"`
	Dimensions    int           `yaml:"dimensions" mapstructure:"dimensions"`
	Timeout       Duration `yaml:"timeout" mapstructure:"timeout"`
	WarmupTimeout Duration `yaml:"warmup_timeout" mapstructure:"warmup_timeout"`
}

type MatchConfig struct {
	TopK          int     `yaml:"top_k" mapstructure:"top_k"`
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	MaxImages     int     `yaml:"max_images" mapstructure:"max_images"`
	EmbedWorkers  int     `yaml:"embed_workers" mapstructure:"embed_workers"`
}

// ProofConfig controls attestation issuance. Secret is environment-only
// (VISION_PROOF_SECRET) and never read from the yaml file.
type ProofConfig struct {
	Secret string        `yaml:"-" mapstructure:"-"`
	TTL    Duration `yaml:"ttl" mapstructure:"ttl"`
	Replay ReplayConfig  `yaml:"replay" mapstructure:"replay"`
}

type ReplayConfig struct {
	Enabled    bool              `yaml:"enabled" mapstructure:"enabled"`
	Driver     string            `yaml:"driver" mapstructure:"driver"`
	GCInterval Duration          `yaml:"gc_interval" mapstructure:"gc_interval"`
	Redis      ReplayRedisConfig `yaml:"redis,omitempty" mapstructure:"redis"`
}

type ReplayRedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Username string `yaml:"username,omitempty" mapstructure:"username"`
	Password string `yaml:"password,omitempty" mapstructure:"password"`
	DB       int    `yaml:"db,omitempty" mapstructure:"db"`
	Prefix   string `yaml:"prefix,omitempty" mapstructure:"prefix"`
}

type SecurityConfig struct {
	MaxFileSize    int64    `yaml:"max_file_size" mapstructure:"max_file_size"`
	MaxPixels      int64    `yaml:"max_pixels" mapstructure:"max_pixels"`
	MaxWidth       int      `yaml:"max_width" mapstructure:"max_width"`
	MaxHeight      int      `yaml:"max_height" mapstructure:"max_height"`
	AllowedFormats []string `yaml:"allowed_formats" mapstructure:"allowed_formats"`
}

type AuditConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	DSN     string `yaml:"dsn" mapstructure:"dsn"`
}

// EvaluationConfig carries the offline release-gate thresholds.
type EvaluationConfig struct {
	CorpusDir                 string  `yaml:"corpus_dir" mapstructure:"corpus_dir"`
	OutputDir                 string  `yaml:"output_dir" mapstructure:"output_dir"`
	MinAccuracy               float64 `yaml:"min_accuracy" mapstructure:"min_accuracy"`
	MinHighConfidenceAccuracy float64 `yaml:"min_high_confidence_accuracy" mapstructure:"min_high_confidence_accuracy"`
	ConfidenceThreshold       float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
}
