package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdinline <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert markdown files to inline-styled HTML")
	fmt.Fprintln(w, "  reflow      Rewrite an HTML file into the inline subset")
	fmt.Fprintln(w, "  text        Print the plain-text rendering of a file")
	fmt.Fprintln(w, "  doctor      Check themes, config and environment")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "'mdinline <file.md>' is short for 'mdinline convert <file.md>'.")
	fmt.Fprintln(w, "Run 'mdinline help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdinline convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to HTML with inline styles only.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file, directory, or - for stdin")
	fmt.Fprintln(w, "           (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>        Output file or directory")
	fmt.Fprintln(w, "      --stdout               Write the HTML to stdout (single file)")
	fmt.Fprintln(w, "  -c, --config <name>        Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>          Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Font:")
	fmt.Fprintln(w, "      --font-family <s>      Family key, e.g. system-default, pingfang-sc,")
	fmt.Fprintln(w, "                             songti, kaiti, georgia (unknown = fallback)")
	fmt.Fprintln(w, "      --font-size <px>       Base size (8-72, 0 = no font styling)")
	fmt.Fprintln(w, "      --line-height <v>      Ratio (1.6) or CSS length (28px)")
	fmt.Fprintln(w, "      --letter-spacing <px>  Letter spacing (-2 to 10)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Theme:")
	fmt.Fprintln(w, "      --theme <name|path>    Theme name or .yaml file")
	fmt.Fprintln(w, "      --asset-path <dir>     Directory with themes/<name>.yaml")
	fmt.Fprintln(w, "      --code-style <s>       Chroma style for code blocks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --preview              Skip font post-processing")
	fmt.Fprintln(w, "      --reflow               Remove remaining table and list tags")
	fmt.Fprintln(w, "      --standalone           Wrap the fragment in a full HTML document")
	fmt.Fprintln(w, "      --image-base-url <u>   Base URL or directory for relative images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w, "  -v, --verbose              Show debug output")
}

// printReflowUsage prints usage for the reflow command.
func printReflowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdinline reflow <file.html|-> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewrite HTML from another editor into sections and spans with")
	fmt.Fprintln(w, "inline styles. Writes <name>.reflow.html unless -o or --stdout is given.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>        Output file")
	fmt.Fprintln(w, "      --stdout               Write the HTML to stdout")
	fmt.Fprintln(w, "      --theme <name|path>    Theme name or .yaml file")
	fmt.Fprintln(w, "      --asset-path <dir>     Directory with themes/<name>.yaml")
	fmt.Fprintln(w, "      --no-sanitize          Trust the input HTML")
	fmt.Fprintln(w, "  -c, --config <name>        Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w, "  -v, --verbose              Show debug output")
}

// printTextUsage prints usage for the text command.
func printTextUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdinline text <file|-> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the plain-text rendering of a Markdown or HTML file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>        Output file (default: stdout)")
	fmt.Fprintln(w, "  -c, --config <name>        Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w, "  -v, --verbose              Show debug output")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "reflow":
		printReflowUsage(env.Stdout)
	case "text":
		printTextUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mdinline doctor [--json] [-c <config>]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check built-in themes, code styles, config and temp directory.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdinline version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdinline help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
