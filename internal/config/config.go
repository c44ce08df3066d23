package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pelletier/go-toml/v2"

	"github.com/alnah/go-mdsite/internal/dateutil"
	"github.com/alnah/go-mdsite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Field length limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
	MaxNameLength        = 100
	MaxEmailLength       = 254  // RFC 5321
	MaxURLLength         = 2048 // Browser limit
	MaxPathLength        = 4096
	MaxLanguageLength    = 35 // BCP 47
	MaxTOCTitleLength    = 100
	MaxPatterns          = 64
	MaxWorkers           = 32
	MaxFeedItems         = 1000
)

// Defaults for the deadmanoz.xyz site.
const (
	DefaultSiteURL         = "https://deadmanoz.xyz"
	DefaultSiteTitle       = "deadmanoz.xyz"
	DefaultSiteDescription = "deadmanoz's website"
	DefaultAuthor          = "deadmanoz"
	DefaultLanguage        = "en"
	DefaultPostsDir        = "_posts"
	DefaultPublicDir       = "public"
	DefaultOutputDir       = "out"
	DefaultRSSFile         = "feed.xml"
	DefaultAtomFile        = "atom.xml"
)

// configDirName is the directory under the user config dir searched by name.
const configDirName = "mdsite"

// Config holds all configuration for a site build.
type Config struct {
	Site    SiteConfig    `yaml:"site" toml:"site"`
	Content ContentConfig `yaml:"content" toml:"content"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Feed    FeedConfig    `yaml:"feed" toml:"feed"`
	Git     GitConfig     `yaml:"git" toml:"git"`
	Assets  AssetsConfig  `yaml:"assets" toml:"assets"`
	TOC     TOCConfig     `yaml:"toc" toml:"toc"`
	Build   BuildConfig   `yaml:"build" toml:"build"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	URL         string `yaml:"url" toml:"url"`
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
	Language    string `yaml:"language" toml:"language"`
	Author      string `yaml:"author" toml:"author"`
	Email       string `yaml:"email" toml:"email"`           // Optional
	DateFormat  string `yaml:"dateFormat" toml:"dateFormat"` // Preset or token format (default: "long")
}

// ContentConfig locates posts and static files.
type ContentConfig struct {
	PostsDir    string   `yaml:"postsDir" toml:"postsDir"`
	PublicDir   string   `yaml:"publicDir" toml:"publicDir"`
	Include     []string `yaml:"include" toml:"include"`         // doublestar globs relative to postsDir
	Exclude     []string `yaml:"exclude" toml:"exclude"`         // doublestar globs relative to postsDir
	Annotations string   `yaml:"annotations" toml:"annotations"` // Default annotations file for plots
}

// OutputConfig defines where the built site is written.
type OutputConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// FeedConfig defines RSS/Atom feed options.
type FeedConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Limit    int    `yaml:"limit" toml:"limit"` // 0 = all posts
	RSSFile  string `yaml:"rssFile" toml:"rssFile"`
	AtomFile string `yaml:"atomFile" toml:"atomFile"`
}

// GitConfig locates the repository queried for post history.
// The token is read from the environment only.
type GitConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Owner    string `yaml:"owner" toml:"owner"`
	Repo     string `yaml:"repo" toml:"repo"`
	PostsDir string `yaml:"postsDir" toml:"postsDir"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath" toml:"basePath"` // Empty = use embedded assets
	Template string `yaml:"template" toml:"template"` // Template set name (default: "default")
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Title    string `yaml:"title" toml:"title"`
	MinDepth int    `yaml:"minDepth" toml:"minDepth"` // 1-6, default 2
	MaxDepth int    `yaml:"maxDepth" toml:"maxDepth"` // 1-6, default 3
	Numbered bool   `yaml:"numbered" toml:"numbered"`
}

// BuildConfig defines build execution options.
type BuildConfig struct {
	Workers int `yaml:"workers" toml:"workers"` // 0 = auto
}

// DefaultConfig returns the configuration of the deadmanoz.xyz site.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			URL:         DefaultSiteURL,
			Title:       DefaultSiteTitle,
			Description: DefaultSiteDescription,
			Language:    DefaultLanguage,
			Author:      DefaultAuthor,
			DateFormat:  "long",
		},
		Content: ContentConfig{
			PostsDir:  DefaultPostsDir,
			PublicDir: DefaultPublicDir,
		},
		Output: OutputConfig{Dir: DefaultOutputDir},
		Feed: FeedConfig{
			Enabled:  true,
			RSSFile:  DefaultRSSFile,
			AtomFile: DefaultAtomFile,
		},
		Git: GitConfig{
			Enabled:  true,
			Owner:    "deadmanoz",
			Repo:     "deadmanoz.xyz",
			PostsDir: DefaultPostsDir,
		},
		TOC: TOCConfig{
			Enabled:  true,
			Title:    "Contents",
			MinDepth: 2,
			MaxDepth: 3,
		},
	}
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := c.Site.validate(); err != nil {
		return fmt.Errorf("%w: site: %v", ErrInvalidConfig, err)
	}

	if err := validateFieldLength("site.title", c.Site.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.description", c.Site.Description, MaxDescriptionLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.author", c.Site.Author, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.email", c.Site.Email, MaxEmailLength); err != nil {
		return err
	}
	if _, err := dateutil.ResolveFormat(c.Site.DateFormat); err != nil {
		return fmt.Errorf("site.dateFormat: %w", err)
	}

	// Validate content paths
	for name, value := range map[string]string{
		"content.postsDir":    c.Content.PostsDir,
		"content.publicDir":   c.Content.PublicDir,
		"content.annotations": c.Content.Annotations,
		"output.dir":          c.Output.Dir,
		"assets.basePath":     c.Assets.BasePath,
	} {
		if err := validateFieldLength(name, value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validatePatterns("content.include", c.Content.Include); err != nil {
		return err
	}
	if err := validatePatterns("content.exclude", c.Content.Exclude); err != nil {
		return err
	}

	// Validate feed fields
	if c.Feed.Limit < 0 || c.Feed.Limit > MaxFeedItems {
		return fmt.Errorf("feed.limit: must be between 0 and %d, got %d", MaxFeedItems, c.Feed.Limit)
	}
	for name, value := range map[string]string{"feed.rssFile": c.Feed.RSSFile, "feed.atomFile": c.Feed.AtomFile} {
		if strings.ContainsAny(value, "/\\\x00") {
			return fmt.Errorf("%s: must be a file name, got %q", name, value)
		}
	}

	// Validate git fields
	if err := validateFieldLength("git.owner", c.Git.Owner, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("git.repo", c.Git.Repo, MaxNameLength); err != nil {
		return err
	}
	if c.Git.Enabled && (c.Git.Owner == "" || c.Git.Repo == "") {
		return fmt.Errorf("git: owner and repo are required when git metadata is enabled")
	}

	if err := validateFieldLength("assets.template", c.Assets.Template, MaxNameLength); err != nil {
		return err
	}

	// Validate TOC fields
	if err := validateFieldLength("toc.title", c.TOC.Title, MaxTOCTitleLength); err != nil {
		return err
	}
	if c.TOC.MinDepth != 0 && (c.TOC.MinDepth < 1 || c.TOC.MinDepth > 6) {
		return fmt.Errorf("toc.minDepth: must be between 1 and 6, got %d", c.TOC.MinDepth)
	}
	if c.TOC.MaxDepth != 0 && (c.TOC.MaxDepth < 1 || c.TOC.MaxDepth > 6) {
		return fmt.Errorf("toc.maxDepth: must be between 1 and 6, got %d", c.TOC.MaxDepth)
	}
	if c.TOC.MinDepth != 0 && c.TOC.MaxDepth != 0 && c.TOC.MinDepth > c.TOC.MaxDepth {
		return fmt.Errorf("toc.minDepth (%d) cannot be greater than toc.maxDepth (%d)", c.TOC.MinDepth, c.TOC.MaxDepth)
	}

	if c.Build.Workers < 0 || c.Build.Workers > MaxWorkers {
		return fmt.Errorf("build.workers: must be between 0 and %d, got %d", MaxWorkers, c.Build.Workers)
	}

	return nil
}

func (s SiteConfig) validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.URL, validation.Required, validation.Length(1, MaxURLLength), is.URL,
			validation.By(func(value any) error {
				u, _ := value.(string)
				if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
					return validation.NewError("mdsite.site.url_scheme", "must be an http or https URL")
				}
				return nil
			})),
		validation.Field(&s.Title, validation.Required),
		validation.Field(&s.Language, validation.Length(0, MaxLanguageLength)),
		validation.Field(&s.Email, is.EmailFormat),
	)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validatePatterns checks glob syntax and count.
func validatePatterns(fieldName string, patterns []string) error {
	if len(patterns) > MaxPatterns {
		return fmt.Errorf("%s: too many patterns (%d, max %d)", fieldName, len(patterns), MaxPatterns)
	}
	for i, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%s[%d]: invalid glob pattern %q", fieldName, i, p)
		}
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(configPath, data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decode parses TOML for .toml files and strict YAML otherwise.
func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	return yamlutil.UnmarshalStrict(data, cfg)
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml, .toml
// Tries locations in order: current directory, ~/.config/mdsite/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml", ".toml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, configDirName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
