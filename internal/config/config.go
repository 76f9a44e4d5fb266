package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atomicstack/inline-menus/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Dump    bool
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envPrefix     = "INLINE_MENUS_"
	envLayout     = envPrefix + "LAYOUT"
	envWatch      = envPrefix + "WATCH"
	envStrict     = envPrefix + "STRICT"
	envRowWidth   = envPrefix + "ROW_WIDTH"
	envWidth      = envPrefix + "WIDTH"
	envHeight     = envPrefix + "HEIGHT"
	envShowFooter = envPrefix + "FOOTER"
	envVerbose    = envPrefix + "VERBOSE"
	envTrace      = envPrefix + "TRACE"
	envLogFile    = envPrefix + "LOG_FILE"
)

var errWatchWithoutLayout = errors.New("-watch needs -layout")

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Flags win over
// the environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("inline-menus", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	layout := fs.String("layout", envOrDefault(env, envLayout, ""), "path to a YAML menu layout (the demo is used when empty)")
	watch := fs.Bool("watch", envOrBool(env, envWatch, false), "reload the layout whenever its file changes")
	strict := fs.Bool("strict", envOrBool(env, envStrict, false), "treat unknown sequence steps as errors")
	rowWidth := fs.Int("row-width", envOrInt(env, envRowWidth, 0), "buttons per keyboard row (0 keeps one row per menu)")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable footer hint row (disabled by default)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, false), "print a message for every shown or closed menu")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	dump := fs.Bool("dump", false, "print the menu table of the layout and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			LayoutPath: *layout,
			Watch:      *watch,
			Strict:     *strict,
			RowWidth:   *rowWidth,
			Width:      *width,
			Height:     *height,
			ShowFooter: *footer,
			Verbose:    *verbose,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Dump: *dump,
		Flags: map[string]string{
			"layout":   *layout,
			"watch":    strconv.FormatBool(*watch),
			"strict":   strconv.FormatBool(*strict),
			"rowWidth": strconv.Itoa(*rowWidth),
			"width":    strconv.Itoa(*width),
			"height":   strconv.Itoa(*height),
			"footer":   strconv.FormatBool(*footer),
			"trace":    strconv.FormatBool(*trace),
			"verbose":  strconv.FormatBool(*verbose),
			"logFile":  *logFile,
			"dump":     strconv.FormatBool(*dump),
		},
		Args: append([]string(nil), args...),
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		values[key] = value
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects option combinations the application cannot run with.
func Validate(cfg Config) error {
	if cfg.App.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", cfg.App.Width)
	}
	if cfg.App.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", cfg.App.Height)
	}
	if cfg.App.RowWidth < 0 {
		return fmt.Errorf("row-width must be >= 0 (got %d)", cfg.App.RowWidth)
	}
	if cfg.App.Watch && strings.TrimSpace(cfg.App.LayoutPath) == "" {
		return errWatchWithoutLayout
	}
	return nil
}
