package main

import (
	"errors"
	"os"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/assets"
	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/dateutil"
	"github.com/alnah/go-mdsite/internal/gitmeta"
)

// Exit codes for the mdsite CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Site built
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or content
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitRemote  = 4 // GitHub API errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Remote errors (exit 4)
	if gitmeta.IsRateLimited(err) {
		return ExitRemote
	}
	var apiErr *gitmeta.APIError
	if errors.As(err, &apiErr) {
		return ExitRemote
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mdsite.ErrPostsDirectory) ||
		errors.Is(err, mdsite.ErrPostRead) ||
		errors.Is(err, mdsite.ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, mdsite.ErrInvalidSiteURL) ||
		errors.Is(err, mdsite.ErrInvalidTOCDepth) ||
		errors.Is(err, mdsite.ErrInvalidAssetPath) ||
		errors.Is(err, mdsite.ErrFrontmatter) ||
		errors.Is(err, mdsite.ErrInvalidPost) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrScriptNotFound) ||
		errors.Is(err, assets.ErrTemplateSetNotFound) ||
		errors.Is(err, assets.ErrIncompleteTemplateSet) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
