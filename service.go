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

package prodmatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/prodmatch/ai"
	"github.com/poiesic/prodmatch/ai/gemini"
	"github.com/poiesic/prodmatch/ai/openai"
	"github.com/poiesic/prodmatch/catalog"
	"github.com/poiesic/prodmatch/config"
	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/match"
	"github.com/poiesic/prodmatch/neighbors"
	"github.com/poiesic/prodmatch/server"
	"github.com/poiesic/prodmatch/storage"
	"github.com/poiesic/prodmatch/storage/badger"
	"github.com/poiesic/prodmatch/storage/postgres"
)

// Service owns the long-lived clients of a matching deployment: the catalog
// store, the AI provider, the neighbor client and the matcher built on them.
// It is safe for concurrent use by multiple match runs.
type Service struct {
	config    *config.File
	backend   *badger.Backend
	catalog   storage.CatalogRepository
	provider  ai.AIProvider
	neighbors *neighbors.Client
	matcher   *match.Matcher
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	provider ai.AIProvider
	catalog  storage.CatalogRepository
	logger   *slog.Logger
}

// WithProvider uses provider instead of building one from the ai section.
// The service takes ownership and closes it.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithCatalog uses repo instead of opening the configured store.
// The service takes ownership and closes it.
func WithCatalog(repo storage.CatalogRepository) ServiceOption {
	return func(o *serviceOptions) {
		o.catalog = repo
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService opens the configured catalog store and AI provider and builds a
// matcher over them. A nil cfg uses config.Default().
func NewService(ctx context.Context, cfg *config.File, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.MatchConfig().Validate(); err != nil {
		return nil, err
	}
	if options.provider == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	s := &Service{
		config:  cfg,
		catalog: options.catalog,
		logger:  logger.With("component", "service"),
	}

	if s.catalog == nil {
		if err := s.openCatalog(ctx); err != nil {
			return nil, err
		}
	}

	s.provider = options.provider
	if s.provider == nil {
		provider, err := NewProvider(ctx, cfg.AIConfig())
		if err != nil {
			s.Close()
			return nil, err
		}
		s.provider = provider
	}

	var err error
	s.neighbors, err = neighbors.NewClient(s.catalog, neighbors.WithLogger(logger))
	if err != nil {
		s.Close()
		return nil, err
	}

	s.matcher, err = match.NewMatcher(
		s.provider.Embedder(),
		s.provider.Reasoner(),
		s.neighbors,
		s.catalog,
		cfg.MatchConfig(),
		match.WithLogger(logger),
	)
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Service) openCatalog(ctx context.Context) error {
	switch s.config.Storage.Driver {
	case config.DriverPostgres:
		repo, err := postgres.NewCatalogRepository(ctx, s.config.Storage.DatabaseURL, s.config.VectorDimensions())
		if err != nil {
			return fmt.Errorf("open postgres catalog: %w", err)
		}
		s.catalog = repo
	case config.DriverBadger, "":
		backend, err := badger.OpenBackend(s.config.Storage.Path, s.config.Storage.InMemory)
		if err != nil {
			return fmt.Errorf("open badger catalog: %w", err)
		}
		repo, err := badger.NewCatalogRepository(backend)
		if err != nil {
			backend.Close()
			return err
		}
		s.backend = backend
		s.catalog = repo
	default:
		return fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, s.config.Storage.Driver)
	}
	return nil
}

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg *ai.Config) (ai.AIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, cfg)
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// Close releases the matcher, the provider and the catalog store.
func (s *Service) Close() error {
	var errs []error
	if s.matcher != nil {
		s.matcher.Release()
	}
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if s.catalog != nil {
		if err := s.catalog.Close(); err != nil {
			s.logger.Error("error closing catalog", "err", err)
			errs = append(errs, err)
		}
	}
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) Config() *config.File {
	return s.config
}

func (s *Service) Catalog() storage.CatalogRepository {
	return s.catalog
}

func (s *Service) Provider() ai.AIProvider {
	return s.provider
}

func (s *Service) Matcher() *match.Matcher {
	return s.matcher
}

// Match runs the pipeline with the configured batch size and rate.
func (s *Service) Match(ctx context.Context, products []string) (*core.MatchResult, error) {
	return s.matcher.Match(ctx, products, s.config.Match.BatchSize, s.config.Match.MaxCallsPerMinute)
}

// NewImporter returns a catalog importer writing to the service's store with
// the configured batch size, rate and retry policy.
func (s *Service) NewImporter(opts ...catalog.ImporterOption) (*catalog.Importer, error) {
	base := []catalog.ImporterOption{
		catalog.WithBatchSize(s.config.Match.BatchSize),
		catalog.WithRate(s.config.Match.MaxCallsPerMinute),
		catalog.WithRetryPolicy(s.config.MatchConfig().RetryPolicy()),
		catalog.WithLogger(s.logger),
	}
	return catalog.NewImporter(s.catalog, s.provider.Embedder(), append(base, opts...)...)
}

// NewServer returns the HTTP handler configured from the server and match
// sections.
func (s *Service) NewServer(opts ...server.Option) (*server.Server, error) {
	base := []server.Option{
		server.WithLogger(s.logger),
		server.WithBatching(s.config.Match.BatchSize, s.config.Match.MaxCallsPerMinute),
		server.WithMaxUploadBytes(s.config.Server.MaxUploadBytes),
		server.WithRequestTimeout(s.config.Server.RequestTimeout),
		server.WithStaticDir(s.config.Server.StaticDir),
	}
	return server.New(s.matcher, append(base, opts...)...)
}

// LookupResult describes how one product name relates to the catalog.
type LookupResult struct {
	Product   string
	Tier      match.Tier
	Neighbors []core.ResolvedNeighbor
}

// Lookup embeds a single product name and returns its ranked, resolved
// neighbors together with the tier the classifier assigns.
func (s *Service) Lookup(ctx context.Context, product string) (*LookupResult, error) {
	if err := core.ValidateProducts([]string{product}); err != nil {
		return nil, err
	}
	cfg := s.config.MatchConfig()

	embedding, err := match.NewEmbeddingClient(s.provider.Embedder(), cfg.RetryPolicy(), s.logger)
	if err != nil {
		return nil, err
	}
	vectors, err := embedding.Embed(ctx, []string{product})
	if err != nil {
		return nil, err
	}
	lists, err := s.neighbors.Query(ctx, vectors, cfg.NeighborCount)
	if err != nil {
		return nil, err
	}

	classifier, err := match.NewClassifier(cfg)
	if err != nil {
		return nil, err
	}
	return &LookupResult{
		Product:   product,
		Tier:      classifier.Classify(lists[0]).Tier,
		Neighbors: s.matcher.Resolver().ResolveAll(ctx, lists[0]),
	}, nil
}
