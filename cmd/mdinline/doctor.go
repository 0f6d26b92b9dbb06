package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/alnah/go-mdinline/internal/assets"
	"github.com/alnah/go-mdinline/internal/config"
	flag "github.com/spf13/pflag"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"`
	Themes   []themeCheck `json:"themes"`
	Config   configCheck  `json:"config"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// themeCheck holds the result of loading one built-in theme.
type themeCheck struct {
	Name      string `json:"name"`
	CodeStyle string `json:"code_style"`
	OK        bool   `json:"ok"`
}

// configCheck holds config resolution results.
type configCheck struct {
	Name   string `json:"name,omitempty"`
	Loaded bool   `json:"loaded"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string   `json:"os"`
	Arch       string   `json:"arch"`
	CI         bool     `json:"ci"`
	MaxProcs   int      `json:"gomaxprocs"`
	UnknownEnv []string `json:"unknown_env,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "JSON output")
	configName := fs.StringP("config", "c", "", "config file name or path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	name := *configName
	if name == "" {
		name = os.Getenv("MDINLINE_CONFIG")
	}
	result := runDoctor(name)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configName string) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			MaxProcs: runtime.GOMAXPROCS(0),
		},
	}

	checkThemes(result)
	checkConfig(result, configName)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkThemes loads every built-in theme (loading validates colors) and
// checks its code style is registered with chroma.
func checkThemes(result *doctorResult) {
	for _, name := range assets.ThemeNames() {
		check := themeCheck{Name: name}
		theme, err := assets.LoadTheme(name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Theme %s: %v", name, err))
			result.Themes = append(result.Themes, check)
			continue
		}
		check.CodeStyle = theme.CodeStyle
		check.OK = true
		if _, ok := styles.Registry[strings.ToLower(theme.CodeStyle)]; !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Theme %s: code style %q not registered, using fallback", name, theme.CodeStyle))
		}
		result.Themes = append(result.Themes, check)
	}
}

// checkConfig loads the named config, if any.
func checkConfig(result *doctorResult, name string) {
	result.Config.Name = name
	if name == "" {
		return
	}
	if _, err := config.LoadConfig(name); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		return
	}
	result.Config.Loaded = true
}

// checkEnvironment detects CI and mistyped MDINLINE_* variables.
func checkEnvironment(result *doctorResult) {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			result.Env.UnknownEnv = append(result.Env.UnknownEnv, name)
		}
	}
	sort.Strings(result.Env.UnknownEnv)
	for _, name := range result.Env.UnknownEnv {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown environment variable %s (typo?)", name))
	}
}

// checkSystem verifies the temp directory is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "mdinline-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdinline doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Themes")
	for _, t := range r.Themes {
		if t.OK {
			fmt.Fprintf(w, "  [OK] %s (code style: %s)\n", t.Name, t.CodeStyle)
		} else {
			fmt.Fprintf(w, "  [ERROR] %s\n", t.Name)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	switch {
	case r.Config.Name == "":
		fmt.Fprintln(w, "  [OK] None (defaults)")
	case r.Config.Loaded:
		fmt.Fprintf(w, "  [OK] Loaded %s\n", r.Config.Name)
	default:
		fmt.Fprintf(w, "  [ERROR] Could not load %s\n", r.Config.Name)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d\n", r.Env.MaxProcs)
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
