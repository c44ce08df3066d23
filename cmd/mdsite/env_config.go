package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-mdsite/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring config files.
type envConfig struct {
	ConfigPath  string // MDSITE_CONFIG: config file path
	SiteURL     string // MDSITE_SITE_URL: absolute site URL
	PostsDir    string // MDSITE_POSTS_DIR: posts directory
	PublicDir   string // MDSITE_PUBLIC_DIR: static files directory
	OutputDir   string // MDSITE_OUTPUT_DIR: build output directory
	AssetPath   string // MDSITE_ASSET_PATH: custom templates, styles and scripts
	Annotations string // MDSITE_ANNOTATIONS: default plot annotations file
	Workers     int    // MDSITE_WORKERS: parallel workers
}

// knownEnvVars lists valid MDSITE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDSITE_CONFIG":      true,
	"MDSITE_SITE_URL":    true,
	"MDSITE_POSTS_DIR":   true,
	"MDSITE_PUBLIC_DIR":  true,
	"MDSITE_OUTPUT_DIR":  true,
	"MDSITE_ASSET_PATH":  true,
	"MDSITE_ANNOTATIONS": true,
	"MDSITE_WORKERS":     true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:  getenv("MDSITE_CONFIG"),
		SiteURL:     getenv("MDSITE_SITE_URL"),
		PostsDir:    getenv("MDSITE_POSTS_DIR"),
		PublicDir:   getenv("MDSITE_PUBLIC_DIR"),
		OutputDir:   getenv("MDSITE_OUTPUT_DIR"),
		AssetPath:   getenv("MDSITE_ASSET_PATH"),
		Annotations: getenv("MDSITE_ANNOTATIONS"),
	}

	// Invalid or non-positive values are ignored
	if workers := getenv("MDSITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDSITE_* variables.
// Helps catch typos like MDSITE_POST_DIR instead of MDSITE_POSTS_DIR.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, "MDSITE_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Environment values override the config file; CLI flags are applied
// afterwards in mergeFlags, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.SiteURL != "" {
		cfg.Site.URL = env.SiteURL
	}
	if env.PostsDir != "" {
		cfg.Content.PostsDir = env.PostsDir
	}
	if env.PublicDir != "" {
		cfg.Content.PublicDir = env.PublicDir
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Annotations != "" {
		cfg.Content.Annotations = env.Annotations
	}
	if env.Workers > 0 {
		cfg.Build.Workers = env.Workers
	}
}
