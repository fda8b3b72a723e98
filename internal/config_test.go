package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Gallery.InitialBatch != 12 || cfg.Gallery.PageBatch != 6 {
		t.Errorf("batches = %d/%d, want 12/6", cfg.Gallery.InitialBatch, cfg.Gallery.PageBatch)
	}
	if cfg.Gallery.BottomThreshold != 100 {
		t.Errorf("threshold = %d, want 100", cfg.Gallery.BottomThreshold)
	}
	if cfg.Index.DSN != ":memory:" {
		t.Errorf("dsn = %q", cfg.Index.DSN)
	}
}

func TestGalleryConfig_Invalid(t *testing.T) {
	cases := map[string]func(*GalleryConfig){
		"relative base url": func(c *GalleryConfig) { c.ImageBaseURL = "placehold.co" },
		"empty base url":    func(c *GalleryConfig) { c.ImageBaseURL = "" },
		"zero initial":      func(c *GalleryConfig) { c.InitialBatch = 0 },
		"negative page":     func(c *GalleryConfig) { c.PageBatch = -1 },
		"negative max":      func(c *GalleryConfig) { c.MaxImages = -5 },
		"negative bottom":   func(c *GalleryConfig) { c.BottomThreshold = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(&cfg.Gallery)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSessionsConfig_Invalid(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sessions.IdleTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero idle ttl should fail")
	}
}

func TestGalleryConfig_Options(t *testing.T) {
	c := GalleryConfig{InitialBatch: 3, PageBatch: 2, MaxImages: 9}
	got := c.Options()
	if got.InitialBatch != 3 || got.PageBatch != 2 || got.MaxImages != 9 {
		t.Errorf("Options() = %+v", got)
	}
}
