// Package curseforge implements the provider contract against the CurseForge
// v1 API, authenticated with an x-api-key header. Before any query can run
// the adapter has to discover the numeric game id for Hytale, so Initialize
// performs that lookup once per credential.
package curseforge

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
	ProviderID = "curseforge"

	defaultBaseURL = "https://api.curseforge.com"
	defaultTimeout = 10 * time.Second
	iconURL        = "https://www.curseforge.com/favicon.ico"

	gameSlug = "hytale"

	// The API rejects pageSize above 50.
	maxPageSize = 50
)

// Client talks to the CurseForge API. The mutex covers the credential and
// the discovered game id, both of which SetAPIKey can swap at runtime.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	log        *zap.SugaredLogger

	mu     sync.RWMutex
	apiKey string
	gameID int
}

// New creates a CurseForge adapter. An empty baseURL selects the public API.
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
		DisplayName:    "CurseForge",
		IconURL:        iconURL,
		RequiresAPIKey: true,
		IsConfigured:   c.IsConfigured(),
	}
}

// Capabilities is empty: no slug lookup, no tag concept, and downloads must
// be proxied because URL resolution needs the API key.
func (c *Client) Capabilities() provider.Capability {
	return 0
}

// Initialize stores the credential and resolves the Hytale game id if it is
// not known yet. Safe to call again after a key change.
func (c *Client) Initialize(ctx context.Context, cfg provider.Config) error {
	c.mu.Lock()
	c.apiKey = cfg.APIKey
	known := c.gameID != 0
	c.mu.Unlock()

	if cfg.Timeout > 0 {
		c.httpClient.Timeout = cfg.Timeout
	}
	if cfg.APIKey == "" || known {
		return nil
	}
	return c.discoverGame(ctx)
}

func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

// SetAPIKey hot-swaps the credential and re-runs game discovery in the
// background. A discovery failure is logged, not surfaced: the next search
// will retry it.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.gameID = 0
	c.mu.Unlock()

	if key == "" {
		return
	}
	go func() {
		if err := c.discoverGame(context.Background()); err != nil {
			c.log.Warnw("Background game discovery failed after key change", zap.Error(err))
		}
	}()
}

// discoverGame resolves the numeric id CurseForge assigned to Hytale.
func (c *Client) discoverGame(ctx context.Context) error {
	var resp struct {
		Data []cfGame `json:"data"`
	}
	if _, err := c.makeRequest(ctx, http.MethodGet, "/v1/games", nil, &resp, false); err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}
	for _, g := range resp.Data {
		if g.Slug == gameSlug {
			c.mu.Lock()
			c.gameID = g.ID
			c.mu.Unlock()
			c.log.Infow("Resolved CurseForge game id", zap.String("game", gameSlug), zap.Int("game_id", g.ID))
			return nil
		}
	}
	return fmt.Errorf("game %q not found in CurseForge game list", gameSlug)
}

// ensureGameID returns the discovered game id, running discovery on demand.
func (c *Client) ensureGameID(ctx context.Context) (int, error) {
	c.mu.RLock()
	id := c.gameID
	c.mu.RUnlock()
	if id != 0 {
		return id, nil
	}
	if err := c.discoverGame(ctx); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID, nil
}

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
	if !isBinary {
		c.mu.RLock()
		req.Header.Set("x-api-key", c.apiKey)
		c.mu.RUnlock()
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "application/octet-stream")
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
		return resp, fmt.Errorf("curseforge request failed: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if target != nil && !isBinary {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return resp, fmt.Errorf("failed to decode json response: %w", err)
		}
	}

	return resp, nil
}

// SearchProjects maps the unified params onto the CurseForge query grammar:
// a 0-based result offset instead of a page number, a capped page size, and
// numeric sort field codes.
func (c *Client) SearchProjects(ctx context.Context, params provider.SearchParams) (*provider.SearchResponse, error) {
	gameID, err := c.ensureGameID(ctx)
	if err != nil {
		return nil, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := url.Values{}
	query.Set("gameId", strconv.Itoa(gameID))
	query.Set("index", strconv.Itoa((page-1)*pageSize))
	query.Set("pageSize", strconv.Itoa(pageSize))
	query.Set("sortField", strconv.Itoa(sortField(params.SortBy)))
	query.Set("sortOrder", sortOrder(params.SortOrder))
	if params.Query != "" {
		query.Set("searchFilter", params.Query)
	}
	if params.Classification != "" {
		query.Set("classId", strconv.Itoa(classID(params.Classification)))
	}
	if len(params.Categories) > 0 {
		// The search endpoint takes a single category id.
		query.Set("categoryId", params.Categories[0])
	}
	if params.GameVersion != "" {
		query.Set("gameVersion", params.GameVersion)
	}

	var raw json.RawMessage
	if _, err := c.makeRequest(ctx, http.MethodGet, "/v1/mods/search", query, &raw, false); err != nil {
		return nil, err
	}

	resp, ok := transformSearchResponse(raw, page, pageSize)
	if !ok {
		c.log.Warnw("Unrecognized search response shape from CurseForge, returning empty result",
			zap.Int("bytes", len(raw)),
		)
		return provider.EmptySearchResponse(ProviderID, provider.SearchParams{Page: page, PageSize: pageSize}), nil
	}
	return resp, nil
}

// GetProject fetches one mod by its numeric id.
func (c *Client) GetProject(ctx context.Context, id string) (*provider.Project, error) {
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if _, err := c.makeRequest(ctx, http.MethodGet, "/v1/mods/"+url.PathEscape(id), nil, &resp, false); err != nil {
		return nil, err
	}
	var mod cfMod
	if err := json.Unmarshal(resp.Data, &mod); err != nil {
		return nil, fmt.Errorf("failed to decode mod payload: %w", err)
	}
	project := transformMod(mod, resp.Data)
	return &project, nil
}

// GetProjectBySlug is not part of the CurseForge contract.
func (c *Client) GetProjectBySlug(_ context.Context, _ string) (*provider.Project, error) {
	return nil, fmt.Errorf("%w: slug lookup", provider.ErrUnsupported)
}

// GetCategories enumerates the Hytale categories.
func (c *Client) GetCategories(ctx context.Context) ([]provider.Category, error) {
	gameID, err := c.ensureGameID(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("gameId", strconv.Itoa(gameID))

	var resp struct {
		Data []cfCategory `json:"data"`
	}
	if _, err := c.makeRequest(ctx, http.MethodGet, "/v1/categories", query, &resp, false); err != nil {
		return nil, err
	}
	return transformCategories(resp.Data), nil
}

// GetTags is not part of the CurseForge contract; the provider has no
// separate tag concept.
func (c *Client) GetTags(_ context.Context) ([]string, error) {
	return nil, fmt.Errorf("%w: tags", provider.ErrUnsupported)
}

// GetVersionDependencies lists a file's dependencies, resolving dependency
// project names best-effort. Upstream failures degrade to an empty slice.
func (c *Client) GetVersionDependencies(ctx context.Context, projectID, versionID string) ([]provider.Dependency, error) {
	file, err := c.getFile(ctx, projectID, versionID)
	if err != nil {
		c.log.Warnw("Failed to fetch file dependencies from CurseForge",
			zap.String("project", projectID),
			zap.String("version", versionID),
			zap.Error(err),
		)
		return []provider.Dependency{}, nil
	}

	deps := make([]provider.Dependency, 0, len(file.Dependencies))
	for _, d := range file.Dependencies {
		depType, ok := dependencyType(d.RelationType)
		if !ok {
			continue // tools and includes have no unified representation
		}

		// Name resolution is best-effort; an unreachable dependency keeps a
		// synthetic label instead of failing the whole listing.
		name := "Mod #" + strconv.Itoa(d.ModID)
		if dep, err := c.GetProject(ctx, strconv.Itoa(d.ModID)); err == nil {
			name = dep.Title
		} else {
			c.log.Warnw("Failed to resolve dependency project name",
				zap.Int("mod_id", d.ModID),
				zap.Error(err),
			)
		}

		out := provider.Dependency{
			ProjectID:   strconv.Itoa(d.ModID),
			ProjectName: name,
			Required:    depType == provider.DependencyRequired,
			Type:        depType,
		}
		if d.FileID != 0 {
			out.VersionID = strconv.Itoa(d.FileID)
		}
		deps = append(deps, out)
	}
	return deps, nil
}

func (c *Client) getFile(ctx context.Context, projectID, fileID string) (*cfFile, error) {
	path := fmt.Sprintf("/v1/mods/%s/files/%s", url.PathEscape(projectID), url.PathEscape(fileID))
	var resp struct {
		Data cfFile `json:"data"`
	}
	if _, err := c.makeRequest(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// resolveDownloadURL finds the file's download location, falling back to the
// dedicated download-url endpoint when the file record omits it.
func (c *Client) resolveDownloadURL(ctx context.Context, projectID, fileID string) (string, error) {
	file, err := c.getFile(ctx, projectID, fileID)
	if err != nil {
		return "", err
	}
	if file.DownloadURL != "" {
		return file.DownloadURL, nil
	}

	path := fmt.Sprintf("/v1/mods/%s/files/%s/download-url", url.PathEscape(projectID), url.PathEscape(fileID))
	var resp struct {
		Data string `json:"data"`
	}
	if _, err := c.makeRequest(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return "", fmt.Errorf("%w: %v", provider.ErrNoDownloadURL, err)
	}
	if resp.Data == "" {
		return "", provider.ErrNoDownloadURL
	}
	return resp.Data, nil
}

// GetDownloadURL is unsupported: resolving a URL needs the API key, so
// callers must proxy through DownloadVersion.
func (c *Client) GetDownloadURL(_ context.Context, _, _ string) (string, error) {
	return "", fmt.Errorf("%w: direct download url", provider.ErrUnsupported)
}

// DownloadVersion resolves the file's location and streams it. The returned
// body is a pass-through of the upstream transfer.
func (c *Client) DownloadVersion(ctx context.Context, projectID, versionID string) (io.ReadCloser, error) {
	downloadURL, err := c.resolveDownloadURL(ctx, projectID, versionID)
	if err != nil {
		return nil, err
	}

	resp, err := c.makeRequest(ctx, http.MethodGet, downloadURL, nil, nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to start download for file %s: %w", versionID, err)
	}
	return resp.Body, nil
}
