package config

import (
	"errors"
	"testing"

	"github.com/atomicstack/inline-menus/internal/app"
	"github.com/google/go-cmp/cmp"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	if diff := cmp.Diff(app.Config{}, cfg.App); diff != "" {
		t.Fatalf("unexpected defaults (-want +got):\n%s", diff)
	}
	if cfg.Dump || cfg.Logging.Trace || cfg.Logging.FilePath != "" {
		t.Fatalf("unexpected logging defaults: %+v dump=%v", cfg.Logging, cfg.Dump)
	}
}

func TestLoadArgsFlagsOverrideEnvironment(t *testing.T) {
	env := []string{
		"INLINE_MENUS_LAYOUT=env.yaml",
		"INLINE_MENUS_ROW_WIDTH=3",
		"INLINE_MENUS_TRACE=true",
		"INLINE_MENUS_WIDTH=not-a-number",
		"OTHER_LAYOUT=ignored",
		"garbage",
	}
	cfg, err := LoadArgs([]string{"-layout", "menu.yaml", "-watch", "-height", "12", "-dump"}, env)
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	want := app.Config{
		LayoutPath: "menu.yaml",
		Watch:      true,
		RowWidth:   3,
		Height:     12,
	}
	if diff := cmp.Diff(want, cfg.App); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
	if !cfg.Logging.Trace {
		t.Fatalf("expected trace from environment")
	}
	if !cfg.Dump {
		t.Fatalf("expected dump flag")
	}
	if cfg.Flags["rowWidth"] != "3" || cfg.Flags["layout"] != "menu.yaml" {
		t.Fatalf("unexpected flags map: %v", cfg.Flags)
	}
}

func TestLoadArgsRejectsInvalidCombinations(t *testing.T) {
	cases := map[string][]string{
		"negative width":     {"-width", "-1"},
		"negative height":    {"-height", "-2"},
		"negative row width": {"-row-width", "-3"},
		"watch demo":         {"-watch"},
		"unknown flag":       {"-socket", "x"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadArgs(args, nil); err == nil {
				t.Fatalf("expected error for %v", args)
			}
		})
	}
}

func TestValidateWatchNeedsLayout(t *testing.T) {
	err := Validate(Config{App: app.Config{Watch: true}})
	if !errors.Is(err, errWatchWithoutLayout) {
		t.Fatalf("expected errWatchWithoutLayout, got %v", err)
	}
	if err := Validate(Config{App: app.Config{Watch: true, LayoutPath: "menu.yaml"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
