package provider

import (
	"encoding/json"
	"time"
)

// Classification is the unified project-type taxonomy. Every provider's own
// category system is mapped onto it so type filtering works the same way
// regardless of the marketplace.
type Classification string

const (
	ClassificationPlugin  Classification = "PLUGIN"
	ClassificationData    Classification = "DATA"
	ClassificationArt     Classification = "ART"
	ClassificationSave    Classification = "SAVE"
	ClassificationModpack Classification = "MODPACK"
)

// ParseClassification maps an arbitrary upstream value onto the closed
// classification set. Unknown or empty values default to PLUGIN.
func ParseClassification(s string) Classification {
	switch Classification(s) {
	case ClassificationPlugin, ClassificationData, ClassificationArt, ClassificationSave, ClassificationModpack:
		return Classification(s)
	default:
		return ClassificationPlugin
	}
}

// DependencyType describes how a dependency relates to the depending version.
type DependencyType string

const (
	DependencyRequired     DependencyType = "required"
	DependencyOptional     DependencyType = "optional"
	DependencyIncompatible DependencyType = "incompatible"
	DependencyEmbedded     DependencyType = "embedded"
)

// SortBy is the unified sort key. Adapters translate it into whatever the
// upstream query grammar expects (string fields, numeric codes, ...).
type SortBy string

const (
	SortByRelevance SortBy = "relevance"
	SortByDownloads SortBy = "downloads"
	SortByRating    SortBy = "rating"
	SortByUpdated   SortBy = "updated"
	SortByCreated   SortBy = "created"
	SortByName      SortBy = "name"
)

// SortOrder is the unified sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Author is the unified author record. When an upstream represents the author
// as a bare string, ID, Username and DisplayName all carry that string.
type Author struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Category is the unified category record.
type Category struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	IconURL string `json:"iconUrl,omitempty"`
}

// Version is one downloadable artifact of a project.
type Version struct {
	ID          string    `json:"id"`
	Version     string    `json:"version"`
	Changelog   string    `json:"changelog,omitempty"`
	Downloads   int64     `json:"downloads"`
	GameVersion string    `json:"gameVersion"`
	ReleaseDate time.Time `json:"releaseDate"`
	FileSize    int64     `json:"fileSize"`
	FileName    string    `json:"fileName"`
}

// Project is the unified project record all adapters produce. It is
// constructed fresh on every call and never mutated afterwards.
//
// Raw carries the untransformed upstream payload for consumers that need
// provider-specific data the unified schema cannot express. Nothing in this
// layer inspects it.
type Project struct {
	ID               string          `json:"id"`
	ProviderID       string          `json:"providerId"`
	Slug             string          `json:"slug"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	ShortDescription string          `json:"shortDescription,omitempty"`
	Classification   Classification  `json:"classification"`
	Author           Author          `json:"author"`
	Categories       []Category      `json:"categories"`
	Tags             []string        `json:"tags,omitempty"`
	Downloads        int64           `json:"downloads"`
	Rating           float64         `json:"rating,omitempty"`
	RatingCount      int64           `json:"ratingCount,omitempty"`
	Followers        int64           `json:"followers,omitempty"`
	IconURL          string          `json:"iconUrl,omitempty"`
	ScreenshotURLs   []string        `json:"screenshotUrls,omitempty"`
	Versions         []Version       `json:"versions"`
	LatestVersion    *Version        `json:"latestVersion,omitempty"`
	GameVersions     []string        `json:"gameVersions,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Raw              json.RawMessage `json:"raw,omitempty"`
}

// Dependency is a unified dependency edge between a version and another
// project. Required is true exactly when Type is DependencyRequired.
type Dependency struct {
	ProjectID   string         `json:"projectId"`
	ProjectName string         `json:"projectName"`
	VersionID   string         `json:"versionId,omitempty"`
	Required    bool           `json:"required"`
	Type        DependencyType `json:"type"`
}

// Config holds adapter initialization parameters. The core does not persist
// it; API keys live in the settings store.
type Config struct {
	APIKey    string
	RateLimit int
	Timeout   time.Duration
}

// Info is the read-only projection of an adapter's identity and configuration
// state. It is the only adapter state exposed without a network call.
type Info struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	IconURL        string `json:"iconUrl,omitempty"`
	RequiresAPIKey bool   `json:"requiresApiKey"`
	IsConfigured   bool   `json:"isConfigured"`
}

// SearchParams is the unified search request. Page is 1-indexed at this
// boundary regardless of the upstream provider's convention.
type SearchParams struct {
	Query          string         `json:"query,omitempty"`
	Classification Classification `json:"classification,omitempty"`
	Categories     []string       `json:"categories,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	GameVersion    string         `json:"gameVersion,omitempty"`
	Page           int            `json:"page"`
	PageSize       int            `json:"pageSize"`
	SortBy         SortBy         `json:"sortBy,omitempty"`
	SortOrder      SortOrder      `json:"sortOrder,omitempty"`
}

// SearchResponse is one provider's search result in unified form.
type SearchResponse struct {
	ProviderID string    `json:"providerId"`
	Projects   []Project `json:"projects"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	HasMore    bool      `json:"hasMore"`
}

// EmptySearchResponse builds the synthetic empty result used when a provider
// fails inside a multi-provider search or returns an unrecognizable payload.
func EmptySearchResponse(providerID string, params SearchParams) *SearchResponse {
	return &SearchResponse{
		ProviderID: providerID,
		Projects:   []Project{},
		Total:      0,
		Page:       params.Page,
		PageSize:   params.PageSize,
		HasMore:    false,
	}
}

// MultiSearchResponse aggregates one SearchResponse per attempted provider,
// in registry iteration order.
type MultiSearchResponse struct {
	Results              []SearchResponse `json:"results"`
	TotalAcrossProviders int64            `json:"totalAcrossProviders"`
}

// ModMetadata is the derived installation record returned alongside a
// download stream so callers can persist what was installed without a second
// round trip.
type ModMetadata struct {
	ProviderID     string         `json:"providerId"`
	ProjectID      string         `json:"projectId"`
	ProjectTitle   string         `json:"projectTitle"`
	IconURL        string         `json:"iconUrl,omitempty"`
	VersionID      string         `json:"versionId"`
	VersionName    string         `json:"versionName"`
	Classification Classification `json:"classification"`
	FileSize       int64          `json:"fileSize"`
	FileName       string         `json:"fileName,omitempty"`
}
