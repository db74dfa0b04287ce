// Package hytalehub implements the provider contract against the Hytale Hub
// community marketplace, a Spring-style REST API authenticated with an
// X-API-Key header.
package hytalehub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hacheraw/hytale-server-manager/provider"
)

const (
	ProviderID = "hytalehub"

	defaultBaseURL = "https://api.hytalehub.com"
	defaultTimeout = 10 * time.Second
	iconURL        = "https://hytalehub.com/favicon.png"
)

// Client talks to the Hytale Hub API. One instance owns its credential;
// the mutex covers the hot-swap path in SetAPIKey.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	log        *zap.SugaredLogger

	mu     sync.RWMutex
	apiKey string
}

// New creates a Hytale Hub adapter. An empty baseURL selects the public API.
func New(baseURL, userAgent string, log *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        log,
	}
}

func (c *Client) ID() string {
	return ProviderID
}

func (c *Client) Info() provider.Info {
	return provider.Info{
		ID:             ProviderID,
		DisplayName:    "Hytale Hub",
		IconURL:        iconURL,
		RequiresAPIKey: true,
		IsConfigured:   c.IsConfigured(),
	}
}

func (c *Client) Capabilities() provider.Capability {
	return provider.CapProjectBySlug | provider.CapTags | provider.CapDownloadURL
}

// Initialize stores the credential. The Hub needs no discovery calls, so a
// repeat call just refreshes the key and timeout.
func (c *Client) Initialize(_ context.Context, cfg provider.Config) error {
	c.mu.Lock()
	c.apiKey = cfg.APIKey
	c.mu.Unlock()

	if cfg.Timeout > 0 {
		c.httpClient.Timeout = cfg.Timeout
	}
	return nil
}

func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// makeRequest issues one API call. For binary requests the path is expected
// to be a full URL already and the response body is returned unconsumed.
func (c *Client) makeRequest(ctx context.Context, method, path string, queryParams url.Values, target interface{}, isBinary bool) (*http.Response, error) {
	fullURL := c.baseURL + path
	if isBinary {
		fullURL = path
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if queryParams != nil {
		req.URL.RawQuery = queryParams.Encode()
	}

	req.Header.Set("User-Agent", c.userAgent)
	c.mu.RLock()
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	c.mu.RUnlock()

	if isBinary {
		req.Header.Set("Accept", "application/octet-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return resp, fmt.Errorf("%w: %s", provider.ErrNotFound, path)
		}
		return resp, fmt.Errorf("hytalehub request failed: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if target != nil && !isBinary {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return resp, fmt.Errorf("failed to decode json response: %w", err)
		}
	}

	return resp, nil
}

// SearchProjects maps the unified params onto the Hub's Spring-style query
// grammar (0-indexed page/size, combined sort=field,direction) and sniffs the
// response shape. Unrecognized payloads degrade to an empty result.
func (c *Client) SearchProjects(ctx context.Context, params provider.SearchParams) (*provider.SearchResponse, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page-1))
	query.Set("size", strconv.Itoa(pageSize))
	query.Set("sort", sortParam(params.SortBy, params.SortOrder))
	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if params.Classification != "" {
		query.Set("type", hubType(params.Classification))
	}
	if len(params.Categories) > 0 {
		query.Set("categories", strings.Join(params.Categories, ","))
	}
	if len(params.Tags) > 0 {
		query.Set("tags", strings.Join(params.Tags, ","))
	}
	if params.GameVersion != "" {
		query.Set("gameVersion", params.GameVersion)
	}

	var raw json.RawMessage
	if _, err := c.makeRequest(ctx, http.MethodGet, "/api/v1/mods", query, &raw, false); err != nil {
		return nil, err
	}

	normalized := provider.SearchParams{Page: page, PageSize: pageSize}
	for _, shape := range searchShapes {
		if resp, ok := shape.transform(raw, normalized); ok {
			return resp, nil
		}
	}

	c.log.Warnw("Unrecognized search response shape from Hytale Hub, returning empty result",
		zap.Int("bytes", len(raw)),
	)
	return provider.EmptySearchResponse(ProviderID, normalized), nil
}

// sortParam builds the combined "field,direction" sort string.
func sortParam(by provider.SortBy, order provider.SortOrder) string {
	field := "relevance"
	switch by {
	case provider.SortByDownloads:
		field = "downloads"
	case provider.SortByRating:
		field = "rating"
	case provider.SortByUpdated:
		field = "updatedAt"
	case provider.SortByCreated:
		field = "createdAt"
	case provider.SortByName:
		field = "name"
	}
	direction := "desc"
	if order == provider.SortAsc {
		direction = "asc"
	}
	return field + "," + direction
}

// GetProject fetches one mod by its numeric id.
func (c *Client) GetProject(ctx context.Context, id string) (*provider.Project, error) {
	return c.fetchProject(ctx, "/api/v1/mods/"+url.PathEscape(id))
}

// GetProjectBySlug fetches one mod by slug.
func (c *Client) GetProjectBySlug(ctx context.Context, slug string) (*provider.Project, error) {
	return c.fetchProject(ctx, "/api/v1/mods/slug/"+url.PathEscape(slug))
}

func (c *Client) fetchProject(ctx context.Context, path string) (*provider.Project, error) {
	mod, raw, err := c.fetchMod(ctx, path)
	if err != nil {
		return nil, err
	}
	project := transformMod(mod, raw)
	return &project, nil
}

func (c *Client) fetchMod(ctx context.Context, path string) (hubMod, json.RawMessage, error) {
	var raw json.RawMessage
	if _, err := c.makeRequest(ctx, http.MethodGet, path, nil, &raw, false); err != nil {
		return hubMod{}, nil, err
	}
	var mod hubMod
	if err := json.Unmarshal(raw, &mod); err != nil {
		return hubMod{}, nil, fmt.Errorf("failed to decode mod payload: %w", err)
	}
	return mod, raw, nil
}

// GetCategories enumerates the Hub's categories. The endpoint has returned
// both object arrays and plain string arrays across API revisions, so both
// are accepted.
func (c *Client) GetCategories(ctx context.Context) ([]provider.Category, error) {
	var raw json.RawMessage
	if _, err := c.makeRequest(ctx, http.MethodGet, "/api/v1/categories", nil, &raw, false); err != nil {
		return nil, err
	}
	return transformCategories(raw)
}

// GetTags enumerates the Hub's tags.
func (c *Client) GetTags(ctx context.Context) ([]string, error) {
	var tags []string
	if _, err := c.makeRequest(ctx, http.MethodGet, "/api/v1/tags", nil, &tags, false); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// GetVersionDependencies lists a version's dependencies. Advisory data:
// upstream failures degrade to an empty slice with a log entry.
func (c *Client) GetVersionDependencies(ctx context.Context, projectID, versionID string) ([]provider.Dependency, error) {
	path := fmt.Sprintf("/api/v1/mods/%s/versions/%s/dependencies", url.PathEscape(projectID), url.PathEscape(versionID))

	var deps []hubDependency
	if _, err := c.makeRequest(ctx, http.MethodGet, path, nil, &deps, false); err != nil {
		c.log.Warnw("Failed to fetch version dependencies from Hytale Hub",
			zap.String("project", projectID),
			zap.String("version", versionID),
			zap.Error(err),
		)
		return []provider.Dependency{}, nil
	}
	return transformDependencies(deps), nil
}

// GetDownloadURL returns the version's hot-linkable download URL.
func (c *Client) GetDownloadURL(ctx context.Context, projectID, versionID string) (string, error) {
	mod, _, err := c.fetchMod(ctx, "/api/v1/mods/"+url.PathEscape(projectID))
	if err != nil {
		return "", err
	}
	for _, v := range mod.Versions {
		if strconv.FormatInt(v.ID, 10) == versionID {
			if v.DownloadURL == "" {
				return "", provider.ErrNoDownloadURL
			}
			return v.DownloadURL, nil
		}
	}
	return "", fmt.Errorf("%w: version %s", provider.ErrNotFound, versionID)
}

// DownloadVersion streams the version's file. The returned body is a
// pass-through of the upstream transfer; the caller closes it.
func (c *Client) DownloadVersion(ctx context.Context, projectID, versionID string) (io.ReadCloser, error) {
	downloadURL, err := c.GetDownloadURL(ctx, projectID, versionID)
	if err != nil {
		return nil, err
	}

	resp, err := c.makeRequest(ctx, http.MethodGet, downloadURL, nil, nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to start download for version %s: %w", versionID, err)
	}
	return resp.Body, nil
}
