package provider

import (
	"context"
	"errors"
	"io"
)

// Capability flags the optional parts of the Provider contract. Callers check
// the bitmask instead of attempting a call and catching ErrUnsupported.
type Capability uint

const (
	// CapProjectBySlug means GetProjectBySlug works.
	CapProjectBySlug Capability = 1 << iota
	// CapTags means the provider has a separate tag concept and GetTags works.
	CapTags
	// CapDownloadURL means the provider allows hot-linking and GetDownloadURL
	// returns a direct link. Providers without it require proxying through
	// DownloadVersion.
	CapDownloadURL
)

// Has reports whether all bits of want are set.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

var (
	// ErrUnknownProvider is returned when no adapter is registered under the
	// requested provider id.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNotConfigured is returned when an adapter exists but has no usable
	// credential yet.
	ErrNotConfigured = errors.New("provider is not configured")
	// ErrNotFound is returned by single-entity lookups when the upstream does
	// not know the requested id or slug.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported is returned by optional operations the adapter does not
	// implement. Check Capabilities before calling them.
	ErrUnsupported = errors.New("operation not supported by this provider")
	// ErrNoDownloadURL is returned when no download location can be resolved
	// for a version by any means.
	ErrNoDownloadURL = errors.New("no download url could be resolved")
)

// Provider is the unified contract every marketplace adapter implements.
// One instance talks to one upstream marketplace and owns its private state
// (credential, discovered upstream identifiers).
type Provider interface {
	// ID returns the stable provider identifier ("curseforge", "hytalehub").
	ID() string

	// Info returns the adapter's identity and configuration state without
	// touching the network.
	Info() Info

	// Capabilities returns the optional-operation bitmask.
	Capabilities() Capability

	// Initialize stores the credential and may perform one-time discovery
	// calls. It is idempotent and safe to call again after a key change.
	Initialize(ctx context.Context, cfg Config) error

	// IsConfigured reports whether the minimum credential for authenticated
	// calls is present. Never touches the network.
	IsConfigured() bool

	// SetAPIKey hot-swaps the credential. Any dependent re-discovery runs in
	// the background; its failure is logged, not returned.
	SetAPIKey(key string)

	// SearchProjects translates the unified params into the upstream query
	// grammar and normalizes the response. Unrecognized response shapes yield
	// an empty result with a logged warning, not an error.
	SearchProjects(ctx context.Context, params SearchParams) (*SearchResponse, error)

	// GetProject fetches one project by its provider-scoped id.
	GetProject(ctx context.Context, id string) (*Project, error)

	// GetProjectBySlug fetches one project by slug. Requires CapProjectBySlug.
	GetProjectBySlug(ctx context.Context, slug string) (*Project, error)

	// GetCategories enumerates the provider's categories.
	GetCategories(ctx context.Context) ([]Category, error)

	// GetTags enumerates the provider's tags. Requires CapTags; providers
	// without a tag concept return ErrUnsupported and callers treat that as
	// an empty set.
	GetTags(ctx context.Context) ([]string, error)

	// GetVersionDependencies lists a version's dependencies. Best-effort: on
	// any upstream error it returns an empty slice and logs instead of
	// propagating.
	GetVersionDependencies(ctx context.Context, projectID, versionID string) ([]Dependency, error)

	// DownloadVersion resolves the binary location and returns a streaming
	// handle. The caller owns closing it.
	DownloadVersion(ctx context.Context, projectID, versionID string) (io.ReadCloser, error)

	// GetDownloadURL returns a direct, hot-linkable URL. Requires
	// CapDownloadURL.
	GetDownloadURL(ctx context.Context, projectID, versionID string) (string, error)
}
