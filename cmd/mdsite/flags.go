package main

import (
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// defaultDebounce is the quiet period before watch mode rebuilds.
const defaultDebounce = 200 * time.Millisecond

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	color   string
}

// contentFlags holds the directory and post selection flags.
type contentFlags struct {
	posts  string
	public string
	hidden bool
}

// assetFlags holds asset-related flags (templates, custom asset path).
type assetFlags struct {
	template  string
	assetPath string
}

// buildFlags holds all flags for the build and watch commands.
type buildFlags struct {
	common   commonFlags
	content  contentFlags
	assets   assetFlags
	output   string
	workers  int
	noGit    bool
	noFeed   bool
	debounce time.Duration
}

// feedFlags holds flags for the feed command.
type feedFlags struct {
	common  commonFlags
	content contentFlags
	output  string
	limit   int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
	fs.StringVar(&f.color, "color", "auto", "colorize output: auto, always, never")
}

// addContentFlags adds content location flags to a FlagSet.
func addContentFlags(fs *flag.FlagSet, f *contentFlags) {
	fs.StringVarP(&f.posts, "posts", "p", "", "posts directory")
	fs.StringVar(&f.public, "public", "", "static files directory")
	fs.BoolVar(&f.hidden, "hidden", false, "include posts marked hidden")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.template, "template", "", "template set name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// newBuildFlagSet returns the flag set shared by build and watch.
func newBuildFlagSet(name string, f *buildFlags, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&f.output, "out", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.noGit, "no-git", false, "skip GitHub commit history")
	fs.BoolVar(&f.noFeed, "no-feed", false, "skip RSS and Atom feeds")

	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)
	addAssetFlags(fs, &f.assets)

	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet("build", f, printBuildUsage, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseWatchFlags parses watch command flags, which extend the build flags.
func parseWatchFlags(args []string, stderr io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet("watch", f, printWatchUsage, stderr)
	fs.DurationVar(&f.debounce, "debounce", defaultDebounce, "quiet period before rebuilding")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseFeedFlags parses feed command flags and returns positional args.
func parseFeedFlags(args []string, stderr io.Writer) (*feedFlags, []string, error) {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &feedFlags{limit: -1}

	fs.StringVarP(&f.output, "out", "o", "", "feed directory (default: public dir)")
	fs.IntVar(&f.limit, "limit", -1, "maximum feed items (0 = all, default: config)")
	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)

	fs.Usage = func() { printFeedUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
