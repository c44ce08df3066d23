package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsite <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Render posts, listings, feeds and sitemap")
	fmt.Fprintln(w, "  feed       Write the RSS and Atom feeds only")
	fmt.Fprintln(w, "  watch      Build, then rebuild when posts change")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdsite help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Content:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -p, --posts <dir>         Posts directory (default: _posts)")
	fmt.Fprintln(w, "      --public <dir>        Static files directory (default: public)")
	fmt.Fprintln(w, "      --hidden              Include posts marked hidden")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w, "      --color <mode>        auto, always, never")
}

func printBuildFlags(w io.Writer) {
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "  -o, --out <dir>           Output directory (default: out)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --no-git              Skip GitHub commit history")
	fmt.Fprintln(w, "      --no-feed             Skip RSS and Atom feeds")
	fmt.Fprintln(w, "      --template <name>     Template set name")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom templates, styles and scripts")
	fmt.Fprintln(w)
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsite build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every post page, the home and section listings, the 404 page,")
	fmt.Fprintln(w, "the RSS and Atom feeds, sitemap.xml and robots.txt.")
	fmt.Fprintln(w)
	printBuildFlags(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDSITE_CONFIG, MDSITE_SITE_URL, MDSITE_POSTS_DIR, MDSITE_PUBLIC_DIR,")
	fmt.Fprintln(w, "  MDSITE_OUTPUT_DIR, MDSITE_ASSET_PATH, MDSITE_ANNOTATIONS, MDSITE_WORKERS")
	fmt.Fprintln(w, "  GITHUB_OWNER, GITHUB_REPO, GITHUB_TOKEN, DISABLE_GIT_METADATA=true")
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsite watch [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the site, then rebuild whenever a file in the posts or public")
	fmt.Fprintln(w, "directory changes. Stop with Ctrl+C.")
	fmt.Fprintln(w)
	printBuildFlags(w)
	fmt.Fprintln(w, "Watch:")
	fmt.Fprintln(w, "      --debounce <d>        Quiet period before rebuilding (default: 200ms)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printFeedUsage prints usage for the feed command.
func printFeedUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsite feed [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write feed.xml and atom.xml without building pages.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Feed:")
	fmt.Fprintln(w, "  -o, --out <dir>           Feed directory (default: public dir)")
	fmt.Fprintln(w, "      --limit <n>           Maximum items (0 = all)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "feed":
		printFeedUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdsite version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdsite help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
