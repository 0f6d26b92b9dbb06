package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/alnah/go-mdinline"
	"github.com/alnah/go-mdinline/internal/pipeline"
	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagNumber
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	FilePattern string // glob for file arguments, empty if none
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   func() []string // enum values
	FileGlob string
	IsDir    bool
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"theme":       {Values: mdinline.ThemeNames},
	"code-style":  {Values: styles.Names},
	"font-family": {Values: fontFamilyNames},
	"config":      {FileGlob: "*.yaml,*.yml"},
	"output":      {IsDir: true},
	"asset-path":  {IsDir: true},
}

// fontFamilyNames lists the font family keys in sorted order.
func fontFamilyNames() []string {
	names := make([]string, 0, len(pipeline.FontFamilies))
	for name := range pipeline.FontFamilies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "float64":
			fd.Type = flagNumber
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case meta.Values != nil:
				fd.Type = flagEnum
				fd.Values = meta.Values()
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        "convert",
			Desc:        "Convert markdown files to inline-styled HTML",
			Flags:       extractFlagsFromFlagSet(buildConvertFlagSet(&convertFlags{})),
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:        "reflow",
			Desc:        "Rewrite an HTML file into the inline subset",
			Flags:       extractFlagsFromFlagSet(buildReflowFlagSet(&reflowFlags{})),
			FilePattern: "*.html,*.htm",
		},
		{
			Name:        "text",
			Desc:        "Print the plain-text rendering of a file",
			Flags:       extractFlagsFromFlagSet(buildTextFlagSet(&textFlags{})),
			FilePattern: "*.md,*.markdown,*.html,*.htm",
		},
		{Name: "doctor", Desc: "Check themes, config and environment", Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "JSON output"}}},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w, getCommands())
	case ShellZsh:
		return generateZsh(w, getCommands())
	case ShellFish:
		return generateFish(w, getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdinline completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdinline completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(mdinline completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mdinline completion fish > ~/.config/fish/completions/mdinline.fish")
}

// ---------------------------------------------------------------------------
// Generators
// ---------------------------------------------------------------------------

// errWriter keeps the first write error so generators can print freely.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func generateBash(w io.Writer, cmds []commandDef) error {
	ew := &errWriter{w: w}
	ew.printf("# bash completion for mdinline\n")
	ew.printf("_mdinline() {\n")
	ew.printf("    local cur prev cmd\n")
	ew.printf("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	ew.printf("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	ew.printf("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	ew.printf("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	ew.printf("        COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") $(compgen -f -X '!*.@(md|markdown)' -- \"$cur\") )\n", commandNames(cmds))
	ew.printf("        return\n")
	ew.printf("    fi\n\n")
	ew.printf("    case \"$cmd\" in\n")
	for _, c := range cmds {
		if c.Name == "completion" {
			ew.printf("    completion)\n        COMPREPLY=( $(compgen -W \"bash zsh fish\" -- \"$cur\") )\n        ;;\n")
			continue
		}
		if len(c.Flags) == 0 && c.FilePattern == "" {
			continue
		}
		ew.printf("    %s)\n", c.Name)
		ew.printf("        case \"$prev\" in\n")
		for _, f := range c.Flags {
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				ew.printf("        %s) COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") ); return ;;\n", pattern, strings.Join(f.Values, " "))
			case flagFile:
				ew.printf("        %s) COMPREPLY=( $(compgen -f -X '!%s' -- \"$cur\") ); return ;;\n", pattern, bashGlob(f.FileGlob))
			case flagDir:
				ew.printf("        %s) COMPREPLY=( $(compgen -d -- \"$cur\") ); return ;;\n", pattern)
			case flagString, flagNumber:
				ew.printf("        %s) return ;;\n", pattern)
			}
		}
		ew.printf("        esac\n")
		ew.printf("        if [[ \"$cur\" == -* ]]; then\n")
		ew.printf("            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", flagWords(c.Flags))
		if c.FilePattern != "" {
			ew.printf("        else\n")
			ew.printf("            COMPREPLY=( $(compgen -f -X '!%s' -- \"$cur\") $(compgen -d -- \"$cur\") )\n", bashGlob(c.FilePattern))
		}
		ew.printf("        fi\n")
		ew.printf("        ;;\n")
	}
	ew.printf("    esac\n")
	ew.printf("}\n")
	ew.printf("shopt -s extglob\n")
	ew.printf("complete -F _mdinline mdinline\n")
	return ew.err
}

// bashGlob turns "*.md,*.markdown" into the extglob "*.@(md|markdown)".
func bashGlob(globs string) string {
	var exts []string
	for _, g := range strings.Split(globs, ",") {
		exts = append(exts, strings.TrimPrefix(g, "*."))
	}
	return "*.@(" + strings.Join(exts, "|") + ")"
}

func flagWords(flags []flagDef) string {
	words := make([]string, 0, len(flags))
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

func generateZsh(w io.Writer, cmds []commandDef) error {
	ew := &errWriter{w: w}
	ew.printf("#compdef mdinline\n\n")
	ew.printf("_mdinline() {\n")
	ew.printf("    local -a commands\n")
	ew.printf("    commands=(\n")
	for _, c := range cmds {
		ew.printf("        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	ew.printf("    )\n\n")
	ew.printf("    if (( CURRENT == 2 )); then\n")
	ew.printf("        _describe 'command' commands\n")
	ew.printf("        _files -g '*.(md|markdown)'\n")
	ew.printf("        return\n")
	ew.printf("    fi\n\n")
	ew.printf("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		if c.Name == "completion" {
			ew.printf("    completion)\n        _values 'shell' bash zsh fish\n        ;;\n")
			continue
		}
		if len(c.Flags) == 0 && c.FilePattern == "" {
			continue
		}
		ew.printf("    %s)\n", c.Name)
		ew.printf("        _arguments \\\n")
		for _, f := range c.Flags {
			ew.printf("            %s \\\n", zshFlagSpec(f))
		}
		if c.FilePattern != "" {
			ew.printf("            '*:file:_files -g \"%s\"'\n", zshGlob(c.FilePattern))
		} else {
			ew.printf("            '*:: :'\n")
		}
		ew.printf("        ;;\n")
	}
	ew.printf("    esac\n")
	ew.printf("}\n\n")
	ew.printf("compdef _mdinline mdinline\n")
	return ew.err
}

func zshFlagSpec(f flagDef) string {
	desc := zshEscape(f.Desc)
	var action string
	switch f.Type {
	case flagBool:
		action = ""
	case flagEnum:
		action = ":value:(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		action = ":file:_files -g \"" + zshGlob(f.FileGlob) + "\""
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":value:"
	}
	if f.Short != "" {
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	}
	return fmt.Sprintf("'--%s[%s]%s'", f.Long, desc, action)
}

// zshGlob turns "*.md,*.markdown" into "*.(md|markdown)".
func zshGlob(globs string) string {
	return strings.Replace(bashGlob(globs), "@(", "(", 1)
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

func generateFish(w io.Writer, cmds []commandDef) error {
	ew := &errWriter{w: w}
	ew.printf("# fish completion for mdinline\n")
	ew.printf("complete -c mdinline -f\n")
	for _, c := range cmds {
		ew.printf("complete -c mdinline -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	ew.printf("complete -c mdinline -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'\n")
	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.Name
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c mdinline -n '%s' -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile, flagDir:
				line += " -r -F"
			case flagString, flagNumber:
				line += " -x"
			}
			ew.printf("%s -d '%s'\n", line, fishEscape(f.Desc))
		}
		if c.FilePattern != "" {
			ew.printf("complete -c mdinline -n '%s' -F\n", cond)
		}
	}
	return ew.err
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
