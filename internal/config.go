package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mosaic/internal/gallery"
	"github.com/starford/mosaic/internal/generator"
	"github.com/starford/mosaic/internal/index"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Gallery  GalleryConfig     `yaml:"gallery"`
	TagPool  TagPoolConfig     `yaml:"tagpool"`
	Index    IndexConfig       `yaml:"index"`
	Sessions SessionsConfig    `yaml:"sessions"`
	Auth     AuthConfig        `yaml:"auth"`
	CORS     CORSConfig        `yaml:"cors"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Gallery.Validate(); err != nil {
		return err
	}
	if err := c.Sessions.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Title    string     `yaml:"title"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// GalleryConfig controls image generation and pagination.
type GalleryConfig struct {
	ImageBaseURL    string `yaml:"image_base_url"`
	InitialBatch    int    `yaml:"initial_batch"`
	PageBatch       int    `yaml:"page_batch"`
	MaxImages       int    `yaml:"max_images"`
	BottomThreshold int    `yaml:"bottom_threshold"`
	// Seed makes every session generate the same sequence. Zero seeds
	// each session from the clock.
	Seed uint64 `yaml:"seed"`
}

// Validate validates the gallery configuration.
func (c *GalleryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ImageBaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.InitialBatch, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.PageBatch, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.MaxImages, validation.Min(0)),
		validation.Field(&c.BottomThreshold, validation.Min(0)),
	)
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// Options converts the batch settings for the gallery package.
func (c *GalleryConfig) Options() gallery.Options {
	return gallery.Options{InitialBatch: c.InitialBatch, PageBatch: c.PageBatch, MaxImages: c.MaxImages}
}

// TagPoolConfig points at an optional tag-pool file.
// An empty path keeps the built-in pool.
type TagPoolConfig struct {
	Path string `yaml:"path"`
}

// IndexConfig holds the SQLite tag index DSN.
type IndexConfig struct {
	DSN string `yaml:"dsn"`
}

// SessionsConfig bounds live gallery sessions.
type SessionsConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	Max           int           `yaml:"max"`
	FacetThrottle time.Duration `yaml:"facet_throttle"`
}

// Validate validates the sessions configuration.
func (c *SessionsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IdleTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Max, validation.Min(0)),
		validation.Field(&c.FacetThrottle, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration for the control API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// CORSConfig lists origins allowed to call the API from another site.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Title:    "Mosaic",
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Gallery: GalleryConfig{
			ImageBaseURL:    generator.DefaultBaseURL,
			InitialBatch:    generator.InitialBatch,
			PageBatch:       generator.PageBatch,
			BottomThreshold: gallery.BottomThreshold,
		},
		Index: IndexConfig{
			DSN: index.MemoryDSN,
		},
		Sessions: SessionsConfig{
			IdleTTL:       30 * time.Minute,
			Max:           1000,
			FacetThrottle: time.Second,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}
