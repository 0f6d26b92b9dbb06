package main

import (
	"fmt"
	"io"

	"github.com/alnah/go-mdinline/internal/logging"
	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// outputFlags holds output destination flags.
type outputFlags struct {
	path   string
	stdout bool
}

// fontFlags holds typography flags.
type fontFlags struct {
	family        string
	size          float64
	lineHeight    string
	letterSpacing float64
}

// themeFlags holds theme selection flags.
type themeFlags struct {
	name      string // Built-in/custom name or path to a .yaml file
	assetPath string
	codeStyle string
}

// renderFlags holds pipeline switches.
type renderFlags struct {
	preview      bool
	reflow       bool
	standalone   bool
	imageBaseURL string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	output  outputFlags
	workers int
	font    fontFlags
	theme   themeFlags
	render  renderFlags
	set     map[string]bool // flags given on the command line
}

// reflowFlags holds flags for the reflow command.
type reflowFlags struct {
	common     commonFlags
	output     outputFlags
	theme      themeFlags
	noSanitize bool
	set        map[string]bool
}

// textFlags holds flags for the text command.
type textFlags struct {
	common commonFlags
	output outputFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

// addOutputFlags adds output destination flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.path, "output", "o", "", "output file or directory")
	fs.BoolVar(&f.stdout, "stdout", false, "write the result to standard output")
}

// addFontFlags adds typography flags to a FlagSet.
func addFontFlags(fs *flag.FlagSet, f *fontFlags) {
	fs.StringVar(&f.family, "font-family", "", "font family key (e.g. songti, pingfang-sc, system-default)")
	fs.Float64Var(&f.size, "font-size", 0, "base font size in px (8-72)")
	fs.StringVar(&f.lineHeight, "line-height", "", "line height ratio or CSS length")
	fs.Float64Var(&f.letterSpacing, "letter-spacing", 0, "letter spacing in px (-2 to 10)")
}

// addThemeFlags adds theme flags to a FlagSet.
func addThemeFlags(fs *flag.FlagSet, f *themeFlags) {
	fs.StringVar(&f.name, "theme", "", "theme name or path to a .yaml theme")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory holding themes/<name>.yaml")
	fs.StringVar(&f.codeStyle, "code-style", "", "chroma style for code blocks")
}

// addRenderFlags adds pipeline switches to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.BoolVar(&f.preview, "preview", false, "skip font post-processing")
	fs.BoolVar(&f.reflow, "reflow", false, "re-flow the output (no table or list tags)")
	fs.BoolVar(&f.standalone, "standalone", false, "wrap the fragment in a full HTML document")
	fs.StringVar(&f.imageBaseURL, "image-base-url", "", "base URL or directory for relative images")
}

// buildConvertFlagSet registers convert flags into f.
// Shared by parseConvertFlags and completion generation.
func buildConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addFontFlags(fs, &f.font)
	addThemeFlags(fs, &f.theme)
	addRenderFlags(fs, &f.render)
	return fs
}

func buildReflowFlagSet(f *reflowFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("reflow", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	addThemeFlags(fs, &f.theme)
	fs.BoolVar(&f.noSanitize, "no-sanitize", false, "trust the input HTML and skip sanitizing")
	return fs
}

func buildTextFlagSet(f *textFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("text", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := buildConvertFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printConvertUsage(stderr) }
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	f.set = changedFlags(fs)
	return f, fs.Args(), nil
}

// parseReflowFlags parses reflow command flags and returns positional args.
func parseReflowFlags(args []string, stderr io.Writer) (*reflowFlags, []string, error) {
	f := &reflowFlags{}
	fs := buildReflowFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printReflowUsage(stderr) }
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	f.set = changedFlags(fs)
	return f, fs.Args(), nil
}

// parseTextFlags parses text command flags and returns positional args.
func parseTextFlags(args []string, stderr io.Writer) (*textFlags, []string, error) {
	f := &textFlags{}
	fs := buildTextFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printTextUsage(stderr) }
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseFlagSet parses args, tagging parse failures as usage errors.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// changedFlags returns the names of flags set on the command line.
func changedFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// logLevel resolves the effective log level; flags beat config.
func logLevel(common commonFlags, configured string) string {
	switch {
	case common.verbose:
		return logging.LevelDebug
	case common.quiet:
		return logging.LevelQuiet
	default:
		return configured
	}
}
