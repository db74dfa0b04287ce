package server

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/hacheraw/hytale-server-manager/provider"
)

func TestParseSearchParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		params := parseSearchParams(url.Values{})
		if params.Page != 1 || params.PageSize != 50 {
			t.Errorf("paging = (%d,%d), want defaults (1,50)", params.Page, params.PageSize)
		}
		if params.Query != "" || params.Classification != "" {
			t.Errorf("unexpected non-zero fields: %+v", params)
		}
	})

	t.Run("query aliases", func(t *testing.T) {
		if got := parseSearchParams(url.Values{"q": {"dragon"}}).Query; got != "dragon" {
			t.Errorf("q alias: Query = %q", got)
		}
		if got := parseSearchParams(url.Values{"query": {"dragon"}}).Query; got != "dragon" {
			t.Errorf("query alias: Query = %q", got)
		}
		if got := parseSearchParams(url.Values{"pageSize": {"10"}}).PageSize; got != 10 {
			t.Errorf("pageSize = %d, want 10", got)
		}
		if got := parseSearchParams(url.Values{"limit": {"10"}}).PageSize; got != 10 {
			t.Errorf("limit alias: PageSize = %d, want 10", got)
		}
	})

	t.Run("classification is normalized", func(t *testing.T) {
		got := parseSearchParams(url.Values{"classification": {"garbage"}})
		if got.Classification != provider.ClassificationPlugin {
			t.Errorf("Classification = %q, want the PLUGIN default", got.Classification)
		}
		got = parseSearchParams(url.Values{"classification": {"SAVE"}})
		if got.Classification != provider.ClassificationSave {
			t.Errorf("Classification = %q, want SAVE", got.Classification)
		}
	})

	t.Run("lists accept both repeated and comma form", func(t *testing.T) {
		want := []string{"mobs", "world-gen", "magic"}

		got := parseSearchParams(url.Values{"categories": {"mobs,world-gen", "magic"}})
		if !reflect.DeepEqual(got.Categories, want) {
			t.Errorf("Categories = %v, want %v", got.Categories, want)
		}

		got = parseSearchParams(url.Values{"tags": {" mobs , world-gen ,", "magic"}})
		if !reflect.DeepEqual(got.Tags, want) {
			t.Errorf("Tags = %v, want %v", got.Tags, want)
		}
	})

	t.Run("bad numbers fall back", func(t *testing.T) {
		params := parseSearchParams(url.Values{"page": {"banana"}, "pageSize": {"-5"}})
		if params.Page != 1 || params.PageSize != 50 {
			t.Errorf("paging = (%d,%d), want defaults (1,50)", params.Page, params.PageSize)
		}
	})
}
