package provider

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func newTestService(t *testing.T, settings SettingsStore, providers ...Provider) *Service {
	t.Helper()
	s := NewService(settings, testLogger(), providers...)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s
}

func TestServiceInitialize(t *testing.T) {
	t.Run("loads persisted api keys", func(t *testing.T) {
		settings := newMemorySettings()
		settings.values["alpha.apiKey"] = "stored-key"

		alpha := &fakeProvider{id: "alpha"}
		beta := &fakeProvider{id: "beta"}
		newTestService(t, settings, alpha, beta)

		if !alpha.IsConfigured() {
			t.Error("alpha should be configured from the stored key")
		}
		if alpha.initCalls != 1 {
			t.Errorf("alpha initialized %d times, want 1", alpha.initCalls)
		}
		if beta.IsConfigured() {
			t.Error("beta has no stored key and should stay unconfigured")
		}
		if beta.initCalls != 0 {
			t.Errorf("beta initialized %d times despite missing key", beta.initCalls)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		settings := newMemorySettings()
		settings.values["alpha.apiKey"] = "stored-key"
		alpha := &fakeProvider{id: "alpha"}
		s := newTestService(t, settings, alpha)

		if err := s.Initialize(context.Background()); err != nil {
			t.Fatalf("second Initialize failed: %v", err)
		}
		if alpha.initCalls != 1 {
			t.Errorf("alpha initialized %d times after repeat call, want 1", alpha.initCalls)
		}
	})

	t.Run("provider init failure is not fatal", func(t *testing.T) {
		settings := newMemorySettings()
		settings.values["bad.apiKey"] = "k"
		settings.values["good.apiKey"] = "k"
		bad := &fakeProvider{id: "bad", initErr: errUpstream}
		good := &fakeProvider{id: "good"}

		s := newTestService(t, settings, bad, good)
		if !s.Registry().Has("bad") {
			t.Error("failing provider should still be registered")
		}
		if !good.IsConfigured() {
			t.Error("good provider should be configured despite sibling failure")
		}
	})
}

func TestServiceSetAPIKey(t *testing.T) {
	t.Run("persists, configures and reinitializes", func(t *testing.T) {
		settings := newMemorySettings()
		alpha := &fakeProvider{id: "alpha"}
		s := newTestService(t, settings, alpha)

		if err := s.SetAPIKey(context.Background(), "alpha", "fresh-key", "admin"); err != nil {
			t.Fatalf("SetAPIKey failed: %v", err)
		}
		if got := settings.values["alpha.apiKey"]; got != "fresh-key" {
			t.Errorf("persisted key = %q, want %q", got, "fresh-key")
		}
		if !alpha.IsConfigured() {
			t.Error("provider not configured after SetAPIKey")
		}
		if alpha.initCalls != 1 {
			t.Errorf("provider initialized %d times, want 1", alpha.initCalls)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		s := newTestService(t, newMemorySettings(), &fakeProvider{id: "alpha"})
		err := s.SetAPIKey(context.Background(), "nope", "k", "admin")
		if !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("err = %v, want ErrUnknownProvider", err)
		}
	})

	t.Run("persistence failure aborts before touching the adapter", func(t *testing.T) {
		settings := newMemorySettings()
		settings.setErr = errUpstream
		alpha := &fakeProvider{id: "alpha"}
		s := newTestService(t, settings, alpha)

		if err := s.SetAPIKey(context.Background(), "alpha", "k", "admin"); err == nil {
			t.Fatal("expected an error when the store rejects the write")
		}
		if alpha.IsConfigured() {
			t.Error("adapter received a key the store never accepted")
		}
	})
}

func TestServiceConfiguredPrecondition(t *testing.T) {
	settings := newMemorySettings()
	settings.values["ready.apiKey"] = "k"
	ready := &fakeProvider{id: "ready"}
	idle := &fakeProvider{id: "idle"}
	s := newTestService(t, settings, ready, idle)

	cases := []struct {
		name string
		call func() error
	}{
		{"Search", func() error { _, err := s.Search(context.Background(), "idle", SearchParams{}); return err }},
		{"GetProject", func() error { _, err := s.GetProject(context.Background(), "idle", "x"); return err }},
		{"GetCategories", func() error { _, err := s.GetCategories(context.Background(), "idle"); return err }},
		{"GetTags", func() error { _, err := s.GetTags(context.Background(), "idle"); return err }},
		{"DownloadVersion", func() error { _, err := s.DownloadVersion(context.Background(), "idle", "x", "y"); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name+" rejects unconfigured provider", func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, ErrNotConfigured) {
				t.Errorf("err = %v, want ErrNotConfigured", err)
			}
		})
	}

	t.Run("unknown id wins over unconfigured", func(t *testing.T) {
		_, err := s.Search(context.Background(), "ghost", SearchParams{})
		if !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("err = %v, want ErrUnknownProvider", err)
		}
	})
}

func TestServiceSearch(t *testing.T) {
	t.Run("single-provider errors propagate", func(t *testing.T) {
		settings := newMemorySettings()
		settings.values["alpha.apiKey"] = "k"
		alpha := &fakeProvider{id: "alpha", searchErr: errUpstream}
		s := newTestService(t, settings, alpha)

		_, err := s.Search(context.Background(), "alpha", SearchParams{Query: "dragon"})
		if !errors.Is(err, errUpstream) {
			t.Errorf("err = %v, want the upstream error", err)
		}
	})

	t.Run("aggregate search swallows the same error", func(t *testing.T) {
		settings := newMemorySettings()
		settings.values["alpha.apiKey"] = "k"
		alpha := &fakeProvider{id: "alpha", searchErr: errUpstream}
		s := newTestService(t, settings, alpha)

		resp := s.SearchAll(context.Background(), SearchParams{Query: "dragon", Page: 1, PageSize: 20})
		if len(resp.Results) != 1 {
			t.Fatalf("got %d results, want 1", len(resp.Results))
		}
		if len(resp.Results[0].Projects) != 0 {
			t.Errorf("expected the empty substitution, got %+v", resp.Results[0])
		}
	})
}

func TestServiceCapabilityGates(t *testing.T) {
	settings := newMemorySettings()
	settings.values["plain.apiKey"] = "k"
	settings.values["rich.apiKey"] = "k"
	plain := &fakeProvider{id: "plain"}
	rich := &fakeProvider{
		id:           "rich",
		capabilities: CapProjectBySlug | CapTags,
		project:      &Project{ID: "42", Slug: "dragon-mounts", Title: "Dragon Mounts"},
		tags:         []string{"dragons", "mounts"},
	}
	s := newTestService(t, settings, plain, rich)

	t.Run("slug lookup refused without the capability", func(t *testing.T) {
		_, err := s.GetProjectBySlug(context.Background(), "plain", "dragon-mounts")
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("err = %v, want ErrUnsupported", err)
		}
	})

	t.Run("slug lookup works with the capability", func(t *testing.T) {
		p, err := s.GetProjectBySlug(context.Background(), "rich", "dragon-mounts")
		if err != nil {
			t.Fatalf("GetProjectBySlug failed: %v", err)
		}
		if p.ID != "42" {
			t.Errorf("project id = %q, want 42", p.ID)
		}
	})

	t.Run("tags degrade to empty set without the capability", func(t *testing.T) {
		tags, err := s.GetTags(context.Background(), "plain")
		if err != nil {
			t.Fatalf("GetTags failed: %v", err)
		}
		if tags == nil || len(tags) != 0 {
			t.Errorf("tags = %v, want empty non-nil slice", tags)
		}
	})

	t.Run("tags pass through with the capability", func(t *testing.T) {
		tags, err := s.GetTags(context.Background(), "rich")
		if err != nil {
			t.Fatalf("GetTags failed: %v", err)
		}
		if len(tags) != 2 || tags[0] != "dragons" {
			t.Errorf("unexpected tags: %v", tags)
		}
	})
}

func TestServiceLookupCaching(t *testing.T) {
	settings := newMemorySettings()
	settings.values["alpha.apiKey"] = "k"
	alpha := &fakeProvider{
		id:           "alpha",
		capabilities: CapTags,
		categories:   []Category{{ID: "1", Name: "Magic", Slug: "magic"}},
		tags:         []string{"spells"},
	}
	s := newTestService(t, settings, alpha)

	for i := 0; i < 3; i++ {
		if _, err := s.GetCategories(context.Background(), "alpha"); err != nil {
			t.Fatalf("GetCategories failed: %v", err)
		}
		if _, err := s.GetTags(context.Background(), "alpha"); err != nil {
			t.Fatalf("GetTags failed: %v", err)
		}
	}
	if alpha.categoryCalls != 1 {
		t.Errorf("upstream category calls = %d, want 1 (cached)", alpha.categoryCalls)
	}
	if alpha.tagCalls != 1 {
		t.Errorf("upstream tag calls = %d, want 1 (cached)", alpha.tagCalls)
	}

	// A key change must drop the cached lookups.
	if err := s.SetAPIKey(context.Background(), "alpha", "rotated", "admin"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}
	if _, err := s.GetCategories(context.Background(), "alpha"); err != nil {
		t.Fatalf("GetCategories after rotation failed: %v", err)
	}
	if alpha.categoryCalls != 2 {
		t.Errorf("upstream category calls after invalidation = %d, want 2", alpha.categoryCalls)
	}
}

func TestServiceDownloadForInstallation(t *testing.T) {
	newAlpha := func() *fakeProvider {
		return &fakeProvider{
			id: "alpha",
			project: &Project{
				ID:             "42",
				ProviderID:     "alpha",
				Title:          "Dragon Mounts",
				Classification: ClassificationPlugin,
				IconURL:        "https://img.example/icon.png",
				Versions: []Version{
					{ID: "v2", Version: "2.0.0", FileName: "dragon-2.0.0.zip", FileSize: 2048, ReleaseDate: time.Now()},
					{ID: "v1", Version: "1.0.0", FileName: "dragon-1.0.0.zip", FileSize: 1024},
				},
				LatestVersion: &Version{ID: "v2", Version: "2.0.0", FileName: "dragon-2.0.0.zip", FileSize: 2048},
			},
			downloadBody: "zip-bytes",
		}
	}

	setup := func(t *testing.T) (*Service, *fakeProvider) {
		settings := newMemorySettings()
		settings.values["alpha.apiKey"] = "k"
		alpha := newAlpha()
		return newTestService(t, settings, alpha), alpha
	}

	t.Run("exact version match", func(t *testing.T) {
		s, alpha := setup(t)
		stream, meta, err := s.DownloadForInstallation(context.Background(), "alpha", "42", "v1")
		if err != nil {
			t.Fatalf("DownloadForInstallation failed: %v", err)
		}
		defer stream.Close()

		if alpha.downloadedWith != "v1" {
			t.Errorf("downloaded version %q, want v1", alpha.downloadedWith)
		}
		if meta.VersionID != "v1" || meta.VersionName != "1.0.0" || meta.FileName != "dragon-1.0.0.zip" {
			t.Errorf("unexpected metadata: %+v", meta)
		}
		if meta.ProjectTitle != "Dragon Mounts" || meta.Classification != ClassificationPlugin {
			t.Errorf("unexpected project metadata: %+v", meta)
		}
		body, _ := io.ReadAll(stream)
		if string(body) != "zip-bytes" {
			t.Errorf("stream body = %q, want zip-bytes", body)
		}
	})

	t.Run("unknown version falls back to latest", func(t *testing.T) {
		s, alpha := setup(t)
		stream, meta, err := s.DownloadForInstallation(context.Background(), "alpha", "42", "v999")
		if err != nil {
			t.Fatalf("DownloadForInstallation failed: %v", err)
		}
		defer stream.Close()

		if alpha.downloadedWith != "v2" {
			t.Errorf("downloaded version %q, want latest v2", alpha.downloadedWith)
		}
		if meta.VersionID != "v2" || meta.FileSize != 2048 {
			t.Errorf("unexpected metadata: %+v", meta)
		}
	})

	t.Run("no versions at all", func(t *testing.T) {
		settings := newMemorySettings()
		settings.values["alpha.apiKey"] = "k"
		alpha := newAlpha()
		alpha.project.Versions = nil
		alpha.project.LatestVersion = nil
		s := newTestService(t, settings, alpha)

		_, _, err := s.DownloadForInstallation(context.Background(), "alpha", "42", "v1")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing project propagates", func(t *testing.T) {
		s, _ := setup(t)
		_, _, err := s.DownloadForInstallation(context.Background(), "alpha", "404", "v1")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestServiceGetProviders(t *testing.T) {
	settings := newMemorySettings()
	settings.values["beta.apiKey"] = "k"
	s := newTestService(t, settings, &fakeProvider{id: "alpha"}, &fakeProvider{id: "beta"})

	infos := s.GetProviders()
	if len(infos) != 2 {
		t.Fatalf("got %d infos, want 2", len(infos))
	}
	if infos[0].ID != "alpha" || infos[1].ID != "beta" {
		t.Errorf("info order = [%s, %s], want [alpha, beta]", infos[0].ID, infos[1].ID)
	}
	if infos[0].IsConfigured {
		t.Error("alpha reported configured without a key")
	}
	if !infos[1].IsConfigured {
		t.Error("beta reported unconfigured despite a stored key")
	}
}
