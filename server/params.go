package server

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hacheraw/hytale-server-manager/provider"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
)

// parseSearchParams maps a query string onto the unified search params.
// Numeric parse failures fall back to defaults instead of erroring: a bad
// page number should not turn a search into a 400.
func parseSearchParams(query url.Values) provider.SearchParams {
	params := provider.SearchParams{
		Query:       firstOf(query, "q", "query"),
		GameVersion: query.Get("gameVersion"),
		Categories:  multiValue(query, "categories"),
		Tags:        multiValue(query, "tags"),
		Page:        intOrDefault(query.Get("page"), defaultPage),
		PageSize:    intOrDefault(firstOf(query, "pageSize", "limit"), defaultPageSize),
		SortBy:      provider.SortBy(query.Get("sortBy")),
		SortOrder:   provider.SortOrder(query.Get("sortOrder")),
	}
	if c := query.Get("classification"); c != "" {
		params.Classification = provider.ParseClassification(c)
	}
	if params.Page < 1 {
		params.Page = defaultPage
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	return params
}

func firstOf(query url.Values, keys ...string) string {
	for _, key := range keys {
		if v := query.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// multiValue accepts both repeated parameters and comma-separated lists.
func multiValue(query url.Values, key string) []string {
	var out []string
	for _, raw := range query[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intOrDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
