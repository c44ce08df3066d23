// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdsite/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a known CI environment variable is set.
func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForGitRateLimit returns hints for exhausted GitHub API quota.
// Builds in CI or containers share an IP with other jobs, so the token
// matters more there.
func ForGitRateLimit() string {
	var hints []string

	if os.Getenv("GITHUB_TOKEN") == "" {
		if inCI() || IsInContainer() {
			hints = append(hints, "set GITHUB_TOKEN in CI to raise the limit from 60 to 5000 requests/hour")
		} else {
			hints = append(hints, "set GITHUB_TOKEN to raise the limit from 60 to 5000 requests/hour")
		}
	}
	hints = append(hints, "set DISABLE_GIT_METADATA=true or pass --no-git to skip commit history")

	return formatHints(hints)
}

// ForGitNotFound returns a hint for posts missing from the GitHub repository.
func ForGitNotFound(owner, repo string) string {
	return format("check GITHUB_OWNER/GITHUB_REPO (currently " + owner + "/" + repo + ") and that the post is pushed")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/mdsite/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/site.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/mdsite") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForPostsDirectory returns a hint for a missing or unreadable posts directory.
func ForPostsDirectory(dir string) string {
	return format("posts are read from " + dir + "; use --posts to point elsewhere")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateNotFound returns hints for template not found errors.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
