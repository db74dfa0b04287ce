package provider

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// SettingsStore is the persisted-settings collaborator. API keys are stored
// under "<providerId>.apiKey" keys.
type SettingsStore interface {
	Get(key string) (string, bool, error)
	Set(key, value, actor string) error
}

func apiKeySetting(providerID string) string {
	return providerID + ".apiKey"
}

// Service is the orchestration facade callers depend on. It bootstraps
// adapters from persisted configuration, enforces the configured precondition
// on per-provider reads, and delegates aggregation to the registry.
type Service struct {
	registry *Registry
	settings SettingsStore
	cache    *lookupCache
	log      *zap.SugaredLogger

	mu          sync.Mutex
	providers   []Provider
	initialized bool
}

// NewService creates a service over the given adapters. Nothing is registered
// until Initialize runs.
func NewService(settings SettingsStore, log *zap.SugaredLogger, providers ...Provider) *Service {
	return &Service{
		registry:  NewRegistry(log),
		settings:  settings,
		cache:     newLookupCache(),
		log:       log,
		providers: providers,
	}
}

// Registry exposes the underlying registry, mainly for tests and wiring.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Initialize registers every known adapter and feeds each one its persisted
// API key, if any. A second call is a no-op.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}

	for _, p := range s.providers {
		s.registry.Register(p)

		key, ok, err := s.settings.Get(apiKeySetting(p.ID()))
		if err != nil {
			return fmt.Errorf("failed to read stored api key for %s: %w", p.ID(), err)
		}
		if !ok || key == "" {
			continue
		}
		if err := p.Initialize(ctx, Config{APIKey: key}); err != nil {
			// A broken upstream must not keep the whole service down.
			s.log.Warnw("Provider initialization failed",
				zap.String("provider", p.ID()),
				zap.Error(err),
			)
		}
	}

	s.initialized = true
	return nil
}

// SetAPIKey persists the key, pushes it into the adapter, and re-runs its
// initialization so dependent discovery picks up the new credential.
func (s *Service) SetAPIKey(ctx context.Context, providerID, key, actor string) error {
	p, ok := s.registry.Get(providerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}

	if err := s.settings.Set(apiKeySetting(providerID), key, actor); err != nil {
		return fmt.Errorf("failed to persist api key for %s: %w", providerID, err)
	}

	p.SetAPIKey(key)
	if err := p.Initialize(ctx, Config{APIKey: key}); err != nil {
		return fmt.Errorf("failed to initialize provider %s: %w", providerID, err)
	}

	s.cache.Invalidate(providerID)
	return nil
}

// GetProviders returns the identity/configuration projection of every
// registered adapter, in registration order.
func (s *Service) GetProviders() []Info {
	all := s.registry.GetAll()
	infos := make([]Info, 0, len(all))
	for _, p := range all {
		infos = append(infos, p.Info())
	}
	return infos
}

// configured resolves a provider id and enforces the shared precondition:
// the id must be known and the adapter must hold a usable credential.
func (s *Service) configured(providerID string) (Provider, error) {
	p, ok := s.registry.Get(providerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}
	if !p.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, providerID)
	}
	return p, nil
}

// Search runs a single-provider search. Unlike SearchAll, upstream errors
// propagate to the caller here.
func (s *Service) Search(ctx context.Context, providerID string, params SearchParams) (*SearchResponse, error) {
	p, err := s.configured(providerID)
	if err != nil {
		return nil, err
	}
	return p.SearchProjects(ctx, params)
}

// SearchAll fans the search out across every configured provider.
func (s *Service) SearchAll(ctx context.Context, params SearchParams) *MultiSearchResponse {
	return s.registry.SearchAll(ctx, params)
}

// GetProject fetches one project from one provider.
func (s *Service) GetProject(ctx context.Context, providerID, projectID string) (*Project, error) {
	p, err := s.configured(providerID)
	if err != nil {
		return nil, err
	}
	return p.GetProject(ctx, projectID)
}

// GetProjectBySlug fetches one project by slug, when the provider supports
// slug lookup.
func (s *Service) GetProjectBySlug(ctx context.Context, providerID, slug string) (*Project, error) {
	p, err := s.configured(providerID)
	if err != nil {
		return nil, err
	}
	if !p.Capabilities().Has(CapProjectBySlug) {
		return nil, fmt.Errorf("%w: slug lookup", ErrUnsupported)
	}
	return p.GetProjectBySlug(ctx, slug)
}

// GetCategories enumerates a provider's categories, memoized for a short TTL.
func (s *Service) GetCategories(ctx context.Context, providerID string) ([]Category, error) {
	p, err := s.configured(providerID)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Categories(providerID); ok {
		return cached, nil
	}
	cats, err := p.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetCategories(providerID, cats)
	return cats, nil
}

// GetTags enumerates a provider's tags. Providers without a tag concept yield
// an empty set, not an error.
func (s *Service) GetTags(ctx context.Context, providerID string) ([]string, error) {
	p, err := s.configured(providerID)
	if err != nil {
		return nil, err
	}
	if !p.Capabilities().Has(CapTags) {
		return []string{}, nil
	}
	if cached, ok := s.cache.Tags(providerID); ok {
		return cached, nil
	}
	tags, err := p.GetTags(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetTags(providerID, tags)
	return tags, nil
}

// GetVersionDependencies lists a version's dependencies. Advisory data: the
// adapter already degrades upstream failures to an empty slice.
func (s *Service) GetVersionDependencies(ctx context.Context, providerID, projectID, versionID string) ([]Dependency, error) {
	p, err := s.configured(providerID)
	if err != nil {
		return nil, err
	}
	return p.GetVersionDependencies(ctx, projectID, versionID)
}

// DownloadVersion opens a download stream for one version.
func (s *Service) DownloadVersion(ctx context.Context, providerID, projectID, versionID string) (io.ReadCloser, error) {
	p, err := s.configured(providerID)
	if err != nil {
		return nil, err
	}
	return p.DownloadVersion(ctx, projectID, versionID)
}

// DownloadForInstallation fetches the project, resolves the target version
// (falling back to the latest when versionID is not in the version list),
// opens the download stream and returns it together with the installation
// metadata a caller needs to record what was installed.
func (s *Service) DownloadForInstallation(ctx context.Context, providerID, projectID, versionID string) (io.ReadCloser, *ModMetadata, error) {
	p, err := s.configured(providerID)
	if err != nil {
		return nil, nil, err
	}

	project, err := p.GetProject(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch project %s: %w", projectID, err)
	}

	var target *Version
	for i := range project.Versions {
		if project.Versions[i].ID == versionID {
			target = &project.Versions[i]
			break
		}
	}
	if target == nil && project.LatestVersion != nil {
		s.log.Warnw("Requested version not found, falling back to latest",
			zap.String("provider", providerID),
			zap.String("project", projectID),
			zap.String("version", versionID),
			zap.String("latest", project.LatestVersion.ID),
		)
		target = project.LatestVersion
	}
	if target == nil {
		return nil, nil, fmt.Errorf("no resolvable version for project %s (requested %s): %w", projectID, versionID, ErrNotFound)
	}

	stream, err := p.DownloadVersion(ctx, projectID, target.ID)
	if err != nil {
		return nil, nil, err
	}

	meta := &ModMetadata{
		ProviderID:     providerID,
		ProjectID:      project.ID,
		ProjectTitle:   project.Title,
		IconURL:        project.IconURL,
		VersionID:      target.ID,
		VersionName:    target.Version,
		Classification: project.Classification,
		FileSize:       target.FileSize,
		FileName:       target.FileName,
	}
	return stream, meta, nil
}
