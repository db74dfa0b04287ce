package curseforge

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/hacheraw/hytale-server-manager/provider"
)

// Numeric sort field codes from the v1 search grammar.
const (
	sortFieldFeatured       = 1
	sortFieldPopularity     = 2
	sortFieldLastUpdated    = 3
	sortFieldName           = 4
	sortFieldAuthor         = 5
	sortFieldTotalDownloads = 6
)

func sortField(by provider.SortBy) int {
	switch by {
	case provider.SortByDownloads:
		return sortFieldTotalDownloads
	case provider.SortByUpdated, provider.SortByCreated:
		return sortFieldLastUpdated
	case provider.SortByName:
		return sortFieldName
	default:
		// relevance and rating have no native code; popularity is closest
		return sortFieldPopularity
	}
}

func sortOrder(order provider.SortOrder) string {
	if order == provider.SortAsc {
		return "asc"
	}
	return "desc"
}

// Class ids of the Hytale sections, mapped onto the unified classification.
const (
	classPlugins  = 5
	classData     = 6945
	classArt      = 12
	classSaves    = 17
	classModpacks = 4471
)

func classID(c provider.Classification) int {
	switch c {
	case provider.ClassificationData:
		return classData
	case provider.ClassificationArt:
		return classArt
	case provider.ClassificationSave:
		return classSaves
	case provider.ClassificationModpack:
		return classModpacks
	default:
		return classPlugins
	}
}

func classify(classID int) provider.Classification {
	switch classID {
	case classData:
		return provider.ClassificationData
	case classArt:
		return provider.ClassificationArt
	case classSaves:
		return provider.ClassificationSave
	case classModpacks:
		return provider.ClassificationModpack
	default:
		return provider.ClassificationPlugin
	}
}

// transformSearchResponse normalizes the search payload. The documented shape
// is a data envelope with a pagination object; an envelope without pagination
// and a bare array are tolerated because both have been observed from proxied
// deployments.
func transformSearchResponse(raw json.RawMessage, page, pageSize int) (*provider.SearchResponse, bool) {
	var envelope struct {
		Data       []json.RawMessage `json:"data"`
		Pagination *cfPagination     `json:"pagination"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		projects := transformMods(envelope.Data)
		resp := &provider.SearchResponse{
			ProviderID: ProviderID,
			Projects:   projects,
			Total:      int64(len(projects)),
			Page:       page,
			PageSize:   pageSize,
			HasMore:    len(projects) == pageSize,
		}
		if p := envelope.Pagination; p != nil {
			resp.Total = p.TotalCount
			resp.HasMore = int64(p.Index+p.ResultCount) < p.TotalCount
			if p.PageSize > 0 {
				resp.PageSize = p.PageSize
				resp.Page = p.Index/p.PageSize + 1 // decode the native offset
			}
		}
		return resp, true
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		projects := transformMods(items)
		return &provider.SearchResponse{
			ProviderID: ProviderID,
			Projects:   projects,
			Total:      int64(len(projects)),
			Page:       page,
			PageSize:   pageSize,
			HasMore:    len(projects) == pageSize,
		}, true
	}

	return nil, false
}

func transformMods(items []json.RawMessage) []provider.Project {
	projects := make([]provider.Project, 0, len(items))
	for _, item := range items {
		var mod cfMod
		if err := json.Unmarshal(item, &mod); err != nil {
			continue
		}
		projects = append(projects, transformMod(mod, item))
	}
	return projects
}

// transformMod normalizes one CurseForge mod into the unified schema.
func transformMod(mod cfMod, raw json.RawMessage) provider.Project {
	files := append([]cfFile(nil), mod.LatestFiles...)
	sort.Slice(files, func(i, j int) bool {
		return files[i].FileDate.After(files[j].FileDate)
	})

	versions := make([]provider.Version, 0, len(files))
	var gameVersions []string
	seen := make(map[string]bool)
	for _, f := range files {
		versions = append(versions, transformFile(f))
		for _, gv := range f.GameVersions {
			if !seen[gv] {
				seen[gv] = true
				gameVersions = append(gameVersions, gv)
			}
		}
	}

	project := provider.Project{
		ID:               strconv.Itoa(mod.ID),
		ProviderID:       ProviderID,
		Slug:             mod.Slug,
		Title:            mod.Name,
		Description:      mod.Summary,
		ShortDescription: mod.Summary,
		Classification:   classify(mod.ClassID),
		Author:           transformAuthor(mod.Authors),
		Categories:       transformCategories(mod.Categories),
		Downloads:        mod.DownloadCount,
		Rating:           mod.Rating,
		RatingCount:      mod.ThumbsUpCount,
		IconURL:          iconFromLogo(mod.Logo),
		ScreenshotURLs:   screenshotURLs(mod.Screenshots),
		Versions:         versions,
		GameVersions:     gameVersions,
		CreatedAt:        mod.DateCreated,
		UpdatedAt:        mod.DateModified,
		Raw:              raw,
	}
	if len(versions) > 0 {
		project.LatestVersion = &project.Versions[0]
	}
	return project
}

func transformFile(f cfFile) provider.Version {
	gameVersion := ""
	if len(f.GameVersions) > 0 {
		gameVersion = f.GameVersions[0]
	}
	size := f.FileLength
	if size < 0 {
		size = 0
	}
	name := f.DisplayName
	if name == "" {
		name = f.FileName
	}
	return provider.Version{
		ID:          strconv.Itoa(f.ID),
		Version:     name,
		Downloads:   f.DownloadCount,
		GameVersion: gameVersion,
		ReleaseDate: f.FileDate,
		FileSize:    size,
		FileName:    f.FileName,
	}
}

func transformAuthor(authors []cfAuthor) provider.Author {
	if len(authors) == 0 {
		return provider.Author{}
	}
	a := authors[0]
	return provider.Author{
		ID:          strconv.Itoa(a.ID),
		Username:    a.Name,
		DisplayName: a.Name,
		AvatarURL:   a.AvatarURL,
	}
}

func transformCategories(cats []cfCategory) []provider.Category {
	out := make([]provider.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, provider.Category{
			ID:      strconv.Itoa(c.ID),
			Name:    c.Name,
			Slug:    c.Slug,
			IconURL: c.IconURL,
		})
	}
	return out
}

func iconFromLogo(logo cfLogo) string {
	if logo.ThumbnailURL != "" {
		return logo.ThumbnailURL
	}
	return logo.URL
}

func screenshotURLs(shots []cfLogo) []string {
	if len(shots) == 0 {
		return nil
	}
	urls := make([]string, 0, len(shots))
	for _, s := range shots {
		urls = append(urls, s.URL)
	}
	return urls
}

// dependencyType maps a relation type code onto the unified dependency type.
// Tools and includes return false: they have no unified representation.
func dependencyType(relation int) (provider.DependencyType, bool) {
	switch relation {
	case relationRequiredDependency:
		return provider.DependencyRequired, true
	case relationOptionalDependency:
		return provider.DependencyOptional, true
	case relationIncompatible:
		return provider.DependencyIncompatible, true
	case relationEmbeddedLibrary:
		return provider.DependencyEmbedded, true
	default:
		return "", false
	}
}
