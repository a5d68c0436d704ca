// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/poiesic/prodmatch/ai"
	"github.com/poiesic/prodmatch/catalog"
	"github.com/poiesic/prodmatch/match"
)

// Storage drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

// ErrInvalidConfig is wrapped by every validation error of this package.
var ErrInvalidConfig = errors.New("invalid configuration")

// File is the complete service configuration.
type File struct {
	AI      AI      `yaml:"ai"`
	Match   Match   `yaml:"match"`
	Storage Storage `yaml:"storage"`
	Server  Server  `yaml:"server"`
	S3      S3      `yaml:"s3"`
}

// AI mirrors ai.Config.
type AI struct {
	Provider            string `yaml:"provider"`
	EmbeddingHost       string `yaml:"embedding_host"`
	ReasoningHost       string `yaml:"reasoning_host"`
	EmbeddingModel      string `yaml:"embedding_model"`
	ReasoningModel      string `yaml:"reasoning_model"`
	APIKey              string `yaml:"api_key"`
	Project             string `yaml:"project"`
	Location            string `yaml:"location"`
	EmbeddingTaskType   string `yaml:"embedding_task_type"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
}

// Match mirrors match.Config.
type Match struct {
	BatchSize          int           `yaml:"batch_size"`
	MaxCallsPerMinute  int           `yaml:"max_calls_per_minute"`
	MaxAttempts        int           `yaml:"max_attempts"`
	RetryBaseDelay     time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay      time.Duration `yaml:"retry_max_delay"`
	NeighborCount      int           `yaml:"neighbor_count"`
	Metric             string        `yaml:"metric"`
	ConfidentThreshold float32       `yaml:"confident_threshold"`
	UncertainThreshold float32       `yaml:"uncertain_threshold"`
	MaxCandidates      int           `yaml:"max_candidates"`
	Workers            int           `yaml:"workers"`
	Disambiguate       bool          `yaml:"disambiguate"`
}

// Storage selects and configures the catalog store.
type Storage struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	InMemory    bool   `yaml:"in_memory"`
	DatabaseURL string `yaml:"database_url"`
	// Dimensions fixes the pgvector column size. Zero uses the embedding
	// dimensions of the AI section.
	Dimensions int `yaml:"dimensions"`
}

// Server configures the HTTP layer.
type Server struct {
	Addr           string        `yaml:"addr"`
	StaticDir      string        `yaml:"static_dir"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// S3 configures object storage access for catalog import and export.
type S3 struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// Default returns the built-in defaults: a local OpenAI-compatible server,
// an on-disk badger catalog and the default matching thresholds.
func Default() *File {
	aiCfg := ai.DefaultConfig()
	matchCfg := match.DefaultConfig()
	return &File{
		AI: AI{
			Provider:            aiCfg.Provider,
			EmbeddingHost:       aiCfg.EmbeddingHost,
			ReasoningHost:       aiCfg.ReasoningHost,
			EmbeddingModel:      aiCfg.EmbeddingModel,
			ReasoningModel:      aiCfg.ReasoningModel,
			EmbeddingTaskType:   aiCfg.EmbeddingTaskType,
			EmbeddingDimensions: aiCfg.EmbeddingDimensions,
		},
		Match: Match{
			BatchSize:          matchCfg.BatchSize,
			MaxCallsPerMinute:  matchCfg.MaxCallsPerMinute,
			MaxAttempts:        matchCfg.MaxAttempts,
			RetryBaseDelay:     matchCfg.RetryBaseDelay,
			RetryMaxDelay:      matchCfg.RetryMaxDelay,
			NeighborCount:      matchCfg.NeighborCount,
			Metric:             string(matchCfg.Metric),
			ConfidentThreshold: matchCfg.ConfidentThreshold,
			UncertainThreshold: matchCfg.UncertainThreshold,
			MaxCandidates:      matchCfg.MaxCandidates,
			Workers:            matchCfg.Workers,
			Disambiguate:       matchCfg.Disambiguate,
		},
		Storage: Storage{
			Driver: DriverBadger,
			Path:   "prodmatch.db",
		},
		Server: Server{
			Addr:           ":8080",
			MaxUploadBytes: 10 << 20,
			RequestTimeout: 10 * time.Minute,
		},
		S3: S3{
			Region: "us-east-1",
		},
	}
}

// Load reads path over the defaults, then applies the environment.
// An empty path skips the file.
func Load(path string) (*File, error) {
	f := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := f.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return f, nil
}

// Save writes f to path as YAML.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables read through lookup.
//
// Provider keys (OPENAI_API_KEY, GOOGLE_API_KEY) only fill an empty APIKey
// for their own provider. PRODMATCH_API_KEY always wins.
func (f *File) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
		}
		*dst = n
		return nil
	}

	str("PRODMATCH_AI_PROVIDER", &f.AI.Provider)
	str("PRODMATCH_EMBEDDING_HOST", &f.AI.EmbeddingHost)
	str("PRODMATCH_REASONING_HOST", &f.AI.ReasoningHost)
	str("PRODMATCH_EMBEDDING_MODEL", &f.AI.EmbeddingModel)
	str("PRODMATCH_REASONING_MODEL", &f.AI.ReasoningModel)
	str("GOOGLE_CLOUD_PROJECT", &f.AI.Project)
	str("GOOGLE_CLOUD_LOCATION", &f.AI.Location)
	if f.AI.APIKey == "" {
		switch strings.ToLower(f.AI.Provider) {
		case ai.ProviderGemini:
			str("GOOGLE_API_KEY", &f.AI.APIKey)
		case ai.ProviderOpenAI, "":
			str("OPENAI_API_KEY", &f.AI.APIKey)
		}
	}
	str("PRODMATCH_API_KEY", &f.AI.APIKey)
	if err := num("PRODMATCH_EMBEDDING_DIMENSIONS", &f.AI.EmbeddingDimensions); err != nil {
		return err
	}

	if err := num("PRODMATCH_BATCH_SIZE", &f.Match.BatchSize); err != nil {
		return err
	}
	if err := num("PRODMATCH_MAX_CALLS_PER_MINUTE", &f.Match.MaxCallsPerMinute); err != nil {
		return err
	}

	str("PRODMATCH_STORAGE_DRIVER", &f.Storage.Driver)
	str("PRODMATCH_DB_PATH", &f.Storage.Path)
	str("DATABASE_URL", &f.Storage.DatabaseURL)

	str("PRODMATCH_LISTEN_ADDR", &f.Server.Addr)
	str("PRODMATCH_STATIC_DIR", &f.Server.StaticDir)

	str("AWS_REGION", &f.S3.Region)
	str("AWS_ENDPOINT_URL_S3", &f.S3.Endpoint)
	str("AWS_ACCESS_KEY_ID", &f.S3.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &f.S3.SecretAccessKey)
	return nil
}

// AIConfig returns the ai section as an ai.Config.
func (f *File) AIConfig() *ai.Config {
	return &ai.Config{
		Provider:            f.AI.Provider,
		EmbeddingHost:       f.AI.EmbeddingHost,
		ReasoningHost:       f.AI.ReasoningHost,
		EmbeddingModel:      f.AI.EmbeddingModel,
		ReasoningModel:      f.AI.ReasoningModel,
		APIKey:              f.AI.APIKey,
		Project:             f.AI.Project,
		Location:            f.AI.Location,
		EmbeddingTaskType:   f.AI.EmbeddingTaskType,
		EmbeddingDimensions: f.AI.EmbeddingDimensions,
	}
}

// MatchConfig returns the match section as a match.Config.
func (f *File) MatchConfig() *match.Config {
	return &match.Config{
		BatchSize:          f.Match.BatchSize,
		MaxCallsPerMinute:  f.Match.MaxCallsPerMinute,
		MaxAttempts:        f.Match.MaxAttempts,
		RetryBaseDelay:     f.Match.RetryBaseDelay,
		RetryMaxDelay:      f.Match.RetryMaxDelay,
		NeighborCount:      f.Match.NeighborCount,
		Metric:             match.Metric(f.Match.Metric),
		ConfidentThreshold: f.Match.ConfidentThreshold,
		UncertainThreshold: f.Match.UncertainThreshold,
		MaxCandidates:      f.Match.MaxCandidates,
		Workers:            f.Match.Workers,
		Disambiguate:       f.Match.Disambiguate,
	}
}

// S3Options returns the s3 section for catalog.NewS3Client.
func (f *File) S3Options() catalog.S3Options {
	return catalog.S3Options{
		Region:          f.S3.Region,
		Endpoint:        f.S3.Endpoint,
		AccessKeyID:     f.S3.AccessKeyID,
		SecretAccessKey: f.S3.SecretAccessKey,
		UsePathStyle:    f.S3.UsePathStyle,
	}
}

// VectorDimensions returns the pgvector column size.
func (f *File) VectorDimensions() int {
	if f.Storage.Dimensions > 0 {
		return f.Storage.Dimensions
	}
	return f.AI.EmbeddingDimensions
}

// Validate checks every section.
func (f *File) Validate() error {
	if err := f.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := f.MatchConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch f.Storage.Driver {
	case DriverBadger:
		if f.Storage.Path == "" && !f.Storage.InMemory {
			return fmt.Errorf("%w: storage.path is required for badger", ErrInvalidConfig)
		}
	case DriverPostgres:
		if f.Storage.DatabaseURL == "" {
			return fmt.Errorf("%w: storage.database_url is required for postgres", ErrInvalidConfig)
		}
		if f.VectorDimensions() <= 0 {
			return fmt.Errorf("%w: postgres needs storage.dimensions or ai.embedding_dimensions", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, f.Storage.Driver)
	}

	if f.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: server.max_upload_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}
