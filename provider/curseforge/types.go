package curseforge

import "time"

// Wire types for the CurseForge v1 API. Only the fields the transforms read.

type cfGame struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type cfAuthor struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	AvatarURL string `json:"avatarUrl"`
}

type cfCategory struct {
	ID      int    `json:"id"`
	GameID  int    `json:"gameId"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	IconURL string `json:"iconUrl"`
	ClassID int    `json:"classId"`
}

type cfLogo struct {
	ID           int    `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Dependency relation types, per the v1 file schema.
const (
	relationEmbeddedLibrary    = 1
	relationOptionalDependency = 2
	relationRequiredDependency = 3
	relationTool               = 4
	relationIncompatible       = 5
	relationInclude            = 6
)

type cfFileDependency struct {
	ModID        int `json:"modId"`
	FileID       int `json:"fileId"`
	RelationType int `json:"relationType"`
}

type cfFile struct {
	ID            int                `json:"id"`
	GameID        int                `json:"gameId"`
	ModID         int                `json:"modId"`
	DisplayName   string             `json:"displayName"`
	FileName      string             `json:"fileName"`
	FileDate      time.Time          `json:"fileDate"`
	FileLength    int64              `json:"fileLength"`
	DownloadCount int64              `json:"downloadCount"`
	DownloadURL   string             `json:"downloadUrl"`
	GameVersions  []string           `json:"gameVersions"`
	Dependencies  []cfFileDependency `json:"dependencies"`
}

type cfLinks struct {
	WebsiteURL string `json:"websiteUrl"`
	WikiURL    string `json:"wikiUrl"`
	IssuesURL  string `json:"issuesUrl"`
	SourceURL  string `json:"sourceUrl"`
}

type cfMod struct {
	ID            int          `json:"id"`
	GameID        int          `json:"gameId"`
	Name          string       `json:"name"`
	Slug          string       `json:"slug"`
	Links         cfLinks      `json:"links"`
	Summary       string       `json:"summary"`
	DownloadCount int64        `json:"downloadCount"`
	ClassID       int          `json:"classId"`
	Categories    []cfCategory `json:"categories"`
	Authors       []cfAuthor   `json:"authors"`
	Logo          cfLogo       `json:"logo"`
	Screenshots   []cfLogo     `json:"screenshots"`
	LatestFiles   []cfFile     `json:"latestFiles"`
	DateCreated   time.Time    `json:"dateCreated"`
	DateModified  time.Time    `json:"dateModified"`
	Rating        float64      `json:"rating"`
	ThumbsUpCount int64        `json:"thumbsUpCount"`
}

type cfPagination struct {
	Index       int   `json:"index"`
	PageSize    int   `json:"pageSize"`
	ResultCount int   `json:"resultCount"`
	TotalCount  int64 `json:"totalCount"`
}
