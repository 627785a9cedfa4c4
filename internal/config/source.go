package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/pluginreviews/internal/model"
)

// SourceConfig holds render attributes for one plugin. Values use the same
// strings as the HTTP query attributes, so "limit: none" and
// "link_all: yes" work as expected. Empty values are unset.
type SourceConfig struct {
	Rating         string `yaml:"rating,omitempty"`
	Limit          string `yaml:"limit,omitempty"`
	SortBy         string `yaml:"sortby,omitempty"`
	Sort           string `yaml:"sort,omitempty"`
	Truncate       string `yaml:"truncate,omitempty"`
	GravatarSize   string `yaml:"gravatar_size,omitempty"`
	Container      string `yaml:"container,omitempty"`
	ContainerID    string `yaml:"container_id,omitempty"`
	ContainerClass string `yaml:"container_class,omitempty"`
	LinkAll        string `yaml:"link_all,omitempty"`
	LinkAdd        string `yaml:"link_add,omitempty"`
	Layout         string `yaml:"layout,omitempty"`
}

// Attrs returns the set attributes keyed by their attribute names.
func (s SourceConfig) Attrs() map[string]string {
	all := map[string]string{
		model.AttrRating:         s.Rating,
		model.AttrLimit:          s.Limit,
		model.AttrSortBy:         s.SortBy,
		model.AttrSort:           s.Sort,
		model.AttrTruncate:       s.Truncate,
		model.AttrGravatarSize:   s.GravatarSize,
		model.AttrContainer:      s.Container,
		model.AttrContainerID:    s.ContainerID,
		model.AttrContainerClass: s.ContainerClass,
		model.AttrLinkAll:        s.LinkAll,
		model.AttrLinkAdd:        s.LinkAdd,
		model.AttrLayout:         s.Layout,
	}

	attrs := make(map[string]string, len(all))
	for k, v := range all {
		if v != "" {
			attrs[k] = v
		}
	}
	return attrs
}

// merge returns s with every set field of override applied.
func (s SourceConfig) merge(override SourceConfig) SourceConfig {
	result := s
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&result.Rating, override.Rating)
	set(&result.Limit, override.Limit)
	set(&result.SortBy, override.SortBy)
	set(&result.Sort, override.Sort)
	set(&result.Truncate, override.Truncate)
	set(&result.GravatarSize, override.GravatarSize)
	set(&result.Container, override.Container)
	set(&result.ContainerID, override.ContainerID)
	set(&result.ContainerClass, override.ContainerClass)
	set(&result.LinkAll, override.LinkAll)
	set(&result.LinkAdd, override.LinkAdd)
	set(&result.Layout, override.Layout)
	return result
}

// CacheSection configures the review cache.
type CacheSection struct {
	// Backend is memory, sqlite or redis.
	Backend string `yaml:"backend,omitempty"`

	// TTL is a Go duration such as "12h".
	TTL string `yaml:"ttl,omitempty"`

	// Dir holds the SQLite database.
	Dir string `yaml:"dir,omitempty"`

	Redis RedisSection `yaml:"redis,omitempty"`
}

// RedisSection configures the Redis cache backend.
type RedisSection struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// ProxySection configures the optional SOCKS5 proxy for catalog requests.
type ProxySection struct {
	Address  string `yaml:"address,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Labels are the user-facing strings of the rendered output. They are
// inserted verbatim and may contain markup.
type Labels struct {
	AllReviews string `yaml:"all_reviews,omitempty"`
	AddReview  string `yaml:"add_review,omitempty"`
	ReadMore   string `yaml:"read_more,omitempty"`

	// Fallback is rendered when reviews are unavailable. "%s" is replaced
	// by the catalog review page.
	Fallback string `yaml:"fallback,omitempty"`
}

// File represents the structure of the .pluginreviews configuration file.
type File struct {
	// Sources maps plugin slugs to their render attributes.
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`

	// Defaults apply to every source unless overridden in Sources.
	Defaults SourceConfig `yaml:"defaults,omitempty"`

	// Template replaces the default review markup.
	Template string `yaml:"template,omitempty"`

	// TemplateFile is read when Template is empty. Relative paths are
	// resolved against the configuration file's directory.
	TemplateFile string `yaml:"template_file,omitempty"`

	Labels Labels       `yaml:"labels,omitempty"`
	Cache  CacheSection `yaml:"cache,omitempty"`
	Proxy  ProxySection `yaml:"proxy,omitempty"`

	// Listen is the HTTP server address.
	Listen string `yaml:"listen,omitempty"`

	// BaseURL overrides the plugin information API endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// dir is the directory the file was loaded from.
	dir string
}

// NewFile returns an empty File.
func NewFile() *File {
	return &File{Sources: make(map[string]SourceConfig)}
}

// GetSourceConfig returns the configuration for a plugin slug, merging the
// source-specific configuration over the defaults.
func (cf *File) GetSourceConfig(sourceID string) SourceConfig {
	result := cf.Defaults
	if sourceConfig, ok := cf.Sources[sourceID]; ok {
		result = result.merge(sourceConfig)
	}
	return result
}

// RenderOptions returns the normalized render options of sourceID.
func (cf *File) RenderOptions(sourceID string) model.RenderOptions {
	base := model.DefaultRenderOptions()
	base.SourceID = sourceID
	return model.ParseRenderOptions(base, cf.GetSourceConfig(sourceID).Attrs())
}

// SourceIDs returns the configured plugin slugs in sorted order.
func (cf *File) SourceIDs() []string {
	ids := make([]string, 0, len(cf.Sources))
	for id := range cf.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadTemplate returns the configured review markup, or "" when none is set.
func (cf *File) LoadTemplate() (string, error) {
	if cf.Template != "" || cf.TemplateFile == "" {
		return cf.Template, nil
	}

	path := cf.TemplateFile
	if !filepath.IsAbs(path) && cf.dir != "" {
		path = filepath.Join(cf.dir, path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided template path is intentional
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(data), nil
}

// Apply copies the settings present in the file onto c.
func (cf *File) Apply(c *Config) error {
	c.File = cf

	if cf.Cache.Backend != "" {
		c.CacheBackend = cf.Cache.Backend
	}
	if cf.Cache.TTL != "" {
		ttl, err := parseDuration(cf.Cache.TTL)
		if err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
		c.CacheTTL = ttl
	}
	if cf.Cache.Dir != "" {
		c.CacheDir = cf.Cache.Dir
	}
	if cf.Cache.Redis.Addr != "" {
		c.RedisAddr = cf.Cache.Redis.Addr
	}
	if cf.Cache.Redis.Password != "" {
		c.RedisPassword = cf.Cache.Redis.Password
	}
	if cf.Cache.Redis.DB != 0 {
		c.RedisDB = cf.Cache.Redis.DB
	}
	if cf.Proxy.Address != "" {
		c.ProxyAddress = cf.Proxy.Address
		c.ProxyUsername = cf.Proxy.Username
		c.ProxyPassword = cf.Proxy.Password
	}
	if cf.Listen != "" {
		c.ListenAddr = cf.Listen
	}
	if cf.BaseURL != "" {
		c.BaseURL = cf.BaseURL
	}
	return nil
}

// parseDuration accepts Go durations and plain seconds.
func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(secs) * time.Second, nil
}
