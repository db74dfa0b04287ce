package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

// fakeProvider is a scriptable in-memory adapter used across the package
// tests. Zero value is an unconfigured provider with no data.
type fakeProvider struct {
	id           string
	capabilities Capability

	mu        sync.Mutex
	apiKey    string
	initErr   error
	initCalls int

	searchResponse *SearchResponse
	searchErr      error
	searchCalls    int

	project    *Project
	projectErr error

	categories     []Category
	categoriesErr  error
	categoryCalls  int
	tags           []string
	tagCalls       int
	deps           []Dependency
	downloadBody   string
	downloadErr    error
	downloadedWith string
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) Info() Info {
	return Info{
		ID:             f.id,
		DisplayName:    f.id,
		RequiresAPIKey: true,
		IsConfigured:   f.IsConfigured(),
	}
}

func (f *fakeProvider) Capabilities() Capability { return f.capabilities }

func (f *fakeProvider) Initialize(_ context.Context, cfg Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	if f.initErr != nil {
		return f.initErr
	}
	f.apiKey = cfg.APIKey
	return nil
}

func (f *fakeProvider) IsConfigured() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apiKey != ""
}

func (f *fakeProvider) SetAPIKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKey = key
}

func (f *fakeProvider) SearchProjects(_ context.Context, _ SearchParams) (*SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResponse, nil
}

func (f *fakeProvider) GetProject(_ context.Context, id string) (*Project, error) {
	if f.projectErr != nil {
		return nil, f.projectErr
	}
	if f.project == nil || f.project.ID != id {
		return nil, ErrNotFound
	}
	return f.project, nil
}

func (f *fakeProvider) GetProjectBySlug(_ context.Context, slug string) (*Project, error) {
	if !f.capabilities.Has(CapProjectBySlug) {
		return nil, ErrUnsupported
	}
	if f.project == nil || f.project.Slug != slug {
		return nil, ErrNotFound
	}
	return f.project, nil
}

func (f *fakeProvider) GetCategories(_ context.Context) ([]Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryCalls++
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeProvider) GetTags(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.capabilities.Has(CapTags) {
		return nil, ErrUnsupported
	}
	f.tagCalls++
	return f.tags, nil
}

func (f *fakeProvider) GetVersionDependencies(_ context.Context, _, _ string) ([]Dependency, error) {
	if f.deps == nil {
		return []Dependency{}, nil
	}
	return f.deps, nil
}

func (f *fakeProvider) DownloadVersion(_ context.Context, _, versionID string) (io.ReadCloser, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	f.downloadedWith = versionID
	return io.NopCloser(bytes.NewBufferString(f.downloadBody)), nil
}

func (f *fakeProvider) GetDownloadURL(_ context.Context, _, _ string) (string, error) {
	if !f.capabilities.Has(CapDownloadURL) {
		return "", ErrUnsupported
	}
	return "https://cdn.example/file.zip", nil
}

// memorySettings is an in-memory SettingsStore for tests.
type memorySettings struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
}

func newMemorySettings() *memorySettings {
	return &memorySettings{values: make(map[string]string)}
}

func (m *memorySettings) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memorySettings) Set(key, value, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

var errUpstream = errors.New("upstream exploded")
