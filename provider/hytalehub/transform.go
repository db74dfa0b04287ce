package hytalehub

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/hacheraw/hytale-server-manager/provider"
)

// hubMod mirrors the Hub's mod payload. Several fields carry a fallback
// alias because the API renamed them between revisions.
type hubMod struct {
	ID               int64           `json:"id"`
	Slug             string          `json:"slug"`
	Name             string          `json:"name"`
	Title            string          `json:"title"` // pre-v1 alias of name
	Summary          string          `json:"summary"`
	ShortDescription string          `json:"shortDescription"` // pre-v1 alias of summary
	Description      string          `json:"description"`
	Type             string          `json:"type"`
	Author           json.RawMessage `json:"author"`
	Categories       json.RawMessage `json:"categories"`
	Tags             []string        `json:"tags"`
	Downloads        int64           `json:"downloads"`
	Rating           float64         `json:"rating"`
	RatingCount      int64           `json:"ratingCount"`
	Followers        int64           `json:"followers"`
	IconURL          string          `json:"iconUrl"`
	Icon             string          `json:"icon"` // pre-v1 alias of iconUrl
	Screenshots      []string        `json:"screenshots"`
	GameVersions     []string        `json:"gameVersions"`
	Versions         []hubVersion    `json:"versions"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type hubVersion struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Changelog    string    `json:"changelog"`
	Downloads    int64     `json:"downloads"`
	GameVersions []string  `json:"gameVersions"`
	ReleasedAt   time.Time `json:"releasedAt"`
	FileSize     int64     `json:"fileSize"`
	FileName     string    `json:"fileName"`
	DownloadURL  string    `json:"downloadUrl"`
}

type hubAuthor struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

type hubCategory struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	IconURL string `json:"iconUrl"`
}

type hubDependency struct {
	ModID     int64  `json:"modId"`
	ModName   string `json:"modName"`
	VersionID *int64 `json:"versionId"`
	Type      string `json:"type"`
}

// searchShape is one detector for a search response envelope: transform
// returns false when the payload does not match its shape, and the next
// detector is tried.
type searchShape struct {
	name      string
	transform func(raw json.RawMessage, params provider.SearchParams) (*provider.SearchResponse, bool)
}

// searchShapes is the fixed priority order: the Spring envelope the current
// API serves, the keyed object some proxies rewrap it into, and the bare
// array the pre-v1 API returned.
var searchShapes = []searchShape{
	{name: "spring-envelope", transform: transformSpringEnvelope},
	{name: "keyed-object", transform: transformKeyedObject},
	{name: "bare-array", transform: transformBareArray},
}

func transformSpringEnvelope(raw json.RawMessage, params provider.SearchParams) (*provider.SearchResponse, bool) {
	var envelope struct {
		Content       []json.RawMessage `json:"content"`
		TotalElements int64             `json:"totalElements"`
		Number        int               `json:"number"`
		Size          int               `json:"size"`
		Last          bool              `json:"last"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Content == nil {
		return nil, false
	}

	pageSize := envelope.Size
	if pageSize == 0 {
		pageSize = params.PageSize
	}
	return &provider.SearchResponse{
		ProviderID: ProviderID,
		Projects:   transformMods(envelope.Content),
		Total:      envelope.TotalElements,
		Page:       envelope.Number + 1, // decode the 0-indexed native page
		PageSize:   pageSize,
		HasMore:    !envelope.Last,
	}, true
}

func transformKeyedObject(raw json.RawMessage, params provider.SearchParams) (*provider.SearchResponse, bool) {
	var keyed struct {
		Mods  []json.RawMessage `json:"mods"`
		Total *int64            `json:"total"`
	}
	if err := json.Unmarshal(raw, &keyed); err != nil || keyed.Mods == nil {
		return nil, false
	}

	projects := transformMods(keyed.Mods)
	total := int64(len(projects))
	hasMore := len(projects) == params.PageSize
	if keyed.Total != nil {
		total = *keyed.Total
		hasMore = int64(params.Page*params.PageSize) < total
	}
	return &provider.SearchResponse{
		ProviderID: ProviderID,
		Projects:   projects,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		HasMore:    hasMore,
	}, true
}

func transformBareArray(raw json.RawMessage, params provider.SearchParams) (*provider.SearchResponse, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	projects := transformMods(items)
	return &provider.SearchResponse{
		ProviderID: ProviderID,
		Projects:   projects,
		Total:      int64(len(projects)),
		Page:       params.Page,
		PageSize:   params.PageSize,
		HasMore:    len(projects) == params.PageSize, // length heuristic, array carries no count
	}, true
}

func transformMods(items []json.RawMessage) []provider.Project {
	projects := make([]provider.Project, 0, len(items))
	for _, item := range items {
		var mod hubMod
		if err := json.Unmarshal(item, &mod); err != nil {
			continue
		}
		projects = append(projects, transformMod(mod, item))
	}
	return projects
}

// transformMod normalizes one Hub mod into the unified schema.
func transformMod(mod hubMod, raw json.RawMessage) provider.Project {
	title := mod.Name
	if title == "" {
		title = mod.Title
	}
	if title == "" {
		title = mod.Slug
	}

	summary := mod.Summary
	if summary == "" {
		summary = mod.ShortDescription
	}

	icon := mod.IconURL
	if icon == "" {
		icon = mod.Icon
	}

	versions := make([]provider.Version, 0, len(mod.Versions))
	gameVersions := append([]string(nil), mod.GameVersions...)
	seen := make(map[string]bool, len(gameVersions))
	for _, gv := range gameVersions {
		seen[gv] = true
	}
	for _, v := range mod.Versions {
		versions = append(versions, transformVersion(v))
		for _, gv := range v.GameVersions {
			if !seen[gv] {
				seen[gv] = true
				gameVersions = append(gameVersions, gv)
			}
		}
	}

	project := provider.Project{
		ID:               strconv.FormatInt(mod.ID, 10),
		ProviderID:       ProviderID,
		Slug:             mod.Slug,
		Title:            title,
		Description:      mod.Description,
		ShortDescription: summary,
		Classification:   classify(mod.Type),
		Author:           transformAuthor(mod.Author),
		Categories:       transformCategoriesLenient(mod.Categories),
		Tags:             mod.Tags,
		Downloads:        mod.Downloads,
		Rating:           mod.Rating,
		RatingCount:      mod.RatingCount,
		Followers:        mod.Followers,
		IconURL:          icon,
		ScreenshotURLs:   mod.Screenshots,
		Versions:         versions,
		GameVersions:     gameVersions,
		CreatedAt:        mod.CreatedAt,
		UpdatedAt:        mod.UpdatedAt,
		Raw:              raw,
	}
	if len(versions) > 0 {
		project.LatestVersion = &project.Versions[0]
	}
	return project
}

func transformVersion(v hubVersion) provider.Version {
	gameVersion := ""
	if len(v.GameVersions) > 0 {
		gameVersion = v.GameVersions[0]
	}
	size := v.FileSize
	if size < 0 {
		size = 0
	}
	return provider.Version{
		ID:          strconv.FormatInt(v.ID, 10),
		Version:     v.Name,
		Changelog:   v.Changelog,
		Downloads:   v.Downloads,
		GameVersion: gameVersion,
		ReleaseDate: v.ReleasedAt,
		FileSize:    size,
		FileName:    v.FileName,
	}
}

// transformAuthor accepts both the object form and the bare username string
// older payloads carried.
func transformAuthor(raw json.RawMessage) provider.Author {
	if len(raw) == 0 {
		return provider.Author{}
	}

	var obj hubAuthor
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.Username != "" || obj.ID != 0) {
		display := obj.DisplayName
		if display == "" {
			display = obj.Username
		}
		return provider.Author{
			ID:          strconv.FormatInt(obj.ID, 10),
			Username:    obj.Username,
			DisplayName: display,
			AvatarURL:   obj.AvatarURL,
		}
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil && name != "" {
		return provider.Author{ID: name, Username: name, DisplayName: name}
	}
	return provider.Author{}
}

// transformCategories decodes the categories endpoint payload, which may be
// an array of objects or an array of plain strings.
func transformCategories(raw json.RawMessage) ([]provider.Category, error) {
	cats := transformCategoriesLenient(raw)
	return cats, nil
}

func transformCategoriesLenient(raw json.RawMessage) []provider.Category {
	if len(raw) == 0 {
		return []provider.Category{}
	}

	var objs []hubCategory
	if err := json.Unmarshal(raw, &objs); err == nil && len(objs) > 0 && objs[0].Name != "" {
		cats := make([]provider.Category, 0, len(objs))
		for _, o := range objs {
			slug := o.Slug
			if slug == "" {
				slug = slugify(o.Name)
			}
			id := strconv.FormatInt(o.ID, 10)
			if o.ID == 0 {
				id = slug
			}
			cats = append(cats, provider.Category{ID: id, Name: o.Name, Slug: slug, IconURL: o.IconURL})
		}
		return cats
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		cats := make([]provider.Category, 0, len(names))
		for _, name := range names {
			slug := slugify(name)
			cats = append(cats, provider.Category{ID: slug, Name: name, Slug: slug})
		}
		return cats
	}
	return []provider.Category{}
}

func transformDependencies(deps []hubDependency) []provider.Dependency {
	out := make([]provider.Dependency, 0, len(deps))
	for _, d := range deps {
		depType := dependencyType(d.Type)
		name := d.ModName
		if name == "" {
			name = "Mod #" + strconv.FormatInt(d.ModID, 10)
		}
		dep := provider.Dependency{
			ProjectID:   strconv.FormatInt(d.ModID, 10),
			ProjectName: name,
			Required:    depType == provider.DependencyRequired,
			Type:        depType,
		}
		if d.VersionID != nil {
			dep.VersionID = strconv.FormatInt(*d.VersionID, 10)
		}
		out = append(out, dep)
	}
	return out
}

func dependencyType(s string) provider.DependencyType {
	switch strings.ToLower(s) {
	case "required":
		return provider.DependencyRequired
	case "optional":
		return provider.DependencyOptional
	case "incompatible":
		return provider.DependencyIncompatible
	case "embedded":
		return provider.DependencyEmbedded
	default:
		return provider.DependencyOptional
	}
}

// classify maps the Hub's mod type onto the unified classification.
func classify(s string) provider.Classification {
	switch strings.ToLower(s) {
	case "plugin":
		return provider.ClassificationPlugin
	case "datapack", "data":
		return provider.ClassificationData
	case "art", "artpack", "resourcepack":
		return provider.ClassificationArt
	case "save", "world", "prefab":
		return provider.ClassificationSave
	case "modpack":
		return provider.ClassificationModpack
	default:
		return provider.ClassificationPlugin
	}
}

// hubType is the inverse mapping used when building search queries.
func hubType(c provider.Classification) string {
	switch c {
	case provider.ClassificationData:
		return "datapack"
	case provider.ClassificationArt:
		return "art"
	case provider.ClassificationSave:
		return "save"
	case provider.ClassificationModpack:
		return "modpack"
	default:
		return "plugin"
	}
}

func slugify(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}
