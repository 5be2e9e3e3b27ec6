package static

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
)

func writeTempMappings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeTempMappings(t, `
mappings:
  - host: Dev.Shop.Localhost
    shopId: shop_dev
    canonicalHost: dev.shop.localhost
    defaultLocale: EN
    mode: active
  - host: old.shop.localhost
    shopId: shop_dev
    canonicalHost: dev.shop.localhost
    defaultLocale: en
    mode: redirect-only
    redirectTo: dev.shop.localhost
`)

	mappings, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(mappings) != 2 {
		t.Fatalf("Load() returned %d mappings, want 2", len(mappings))
	}
	if mappings[0].Host != "dev.shop.localhost" {
		t.Errorf("host not normalized: %q", mappings[0].Host)
	}
	if mappings[0].DefaultLocale != "en" {
		t.Errorf("locale not normalized: %q", mappings[0].DefaultLocale)
	}
	if mappings[1].Mode != domain.ModeRedirectOnly {
		t.Errorf("mode = %q, want redirect-only", mappings[1].Mode)
	}
}

func TestLoaderLoadInvalidEntry(t *testing.T) {
	path := writeTempMappings(t, `
mappings:
  - host: dev.shop.localhost
    shopId: ""
    canonicalHost: dev.shop.localhost
    defaultLocale: en
    mode: active
`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Fatal("Load() should fail on an invalid entry")
	}
}

func TestLoaderLoadMissingFile(t *testing.T) {
	if _, err := NewLoader("/does/not/exist.yaml").Load(); err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

func TestParseEnvJSON(t *testing.T) {
	raw := `{
		"dev.shop.localhost": {
			"shopId": "shop_dev",
			"canonicalHost": "dev.shop.localhost",
			"defaultLocale": "en",
			"mode": "active"
		}
	}`

	byHost, err := ParseEnvJSON(raw)
	if err != nil {
		t.Fatalf("ParseEnvJSON() error = %v", err)
	}
	m := byHost["dev.shop.localhost"]
	if m == nil {
		t.Fatal("mapping missing from result")
	}
	if m.Host != "dev.shop.localhost" {
		t.Errorf("object key should fill Host, got %q", m.Host)
	}
	if m.ShopID != "shop_dev" {
		t.Errorf("ShopID = %q", m.ShopID)
	}
}

func TestParseEnvJSONEmpty(t *testing.T) {
	byHost, err := ParseEnvJSON("")
	if err != nil {
		t.Fatalf("ParseEnvJSON(\"\") error = %v", err)
	}
	if len(byHost) != 0 {
		t.Errorf("expected empty map, got %d entries", len(byHost))
	}
}

func TestParseEnvJSONInvalid(t *testing.T) {
	if _, err := ParseEnvJSON(`{"h": {"mode": "nope"}}`); err == nil {
		t.Fatal("ParseEnvJSON should reject invalid mappings")
	}
}

func TestSourcePrecedence(t *testing.T) {
	src := NewSource()
	src.SetEnv(map[string]*domain.HostMapping{
		"a.example": {Host: "a.example", ShopID: "from_env", CanonicalHost: "a.example", DefaultLocale: "en", Mode: domain.ModeActive},
	})
	src.ReplaceFile([]domain.HostMapping{
		{Host: "a.example", ShopID: "from_file", CanonicalHost: "a.example", DefaultLocale: "en", Mode: domain.ModeActive},
		{Host: "b.example", ShopID: "shop_b", CanonicalHost: "b.example", DefaultLocale: "en", Mode: domain.ModeActive},
	})

	if got := src.Lookup("a.example"); got == nil || got.ShopID != "from_env" {
		t.Errorf("env entry must win for duplicated host, got %+v", got)
	}
	if got := src.Lookup("b.example"); got == nil || got.ShopID != "shop_b" {
		t.Errorf("file entry missing, got %+v", got)
	}
	if got := src.Lookup("c.example"); got != nil {
		t.Errorf("unknown host should be nil, got %+v", got)
	}
	if n := src.Count(); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}
