package config

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
output_dir = /tmp/crops
resize_width = 800
resize_height = 600

[options]
circle = true
resize = true
enhance = false

[notify]
export = true
copy = false

[theme.my_custom_theme]
Background = #111111
RegionOutline = #FF0000
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}

	if cfg.OutputDir != "/tmp/crops" {
		t.Errorf("Expected output_dir '/tmp/crops', got '%s'", cfg.OutputDir)
	}
	if cfg.ResizeWidth != 800 || cfg.ResizeHeight != 600 {
		t.Errorf("Unexpected resize dims: %dx%d", cfg.ResizeWidth, cfg.ResizeHeight)
	}

	if !cfg.Options.Circle {
		t.Error("Expected options.circle to be true")
	}
	if !cfg.Options.Resize {
		t.Error("Expected options.resize to be true")
	}
	if cfg.Options.Enhance {
		t.Error("Expected options.enhance to be false")
	}

	if !cfg.Notify.Export {
		t.Error("Expected notify.export to be true")
	}
	if cfg.Notify.Copy {
		t.Error("Expected notify.copy to be false")
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}

	if th.Background.R != 0x11 || th.Background.G != 0x11 || th.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", th.Background)
	}
	if th.RegionOutline.R != 0xFF || th.RegionOutline.G != 0 || th.RegionOutline.B != 0 {
		t.Errorf("Unexpected RegionOutline color: %+v", th.RegionOutline)
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
output_dir = /home/user/crops
resize_width = 1024
resize_height = 768

[options]
circle = true
resize = false
enhance = true

[notify]
export = true
copy = true

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare relevant fields
	if cfg.Theme != cfg2.Theme {
		t.Errorf("Theme mismatch: %q vs %q", cfg.Theme, cfg2.Theme)
	}
	if cfg.OutputDir != cfg2.OutputDir {
		t.Errorf("OutputDir mismatch: %q vs %q", cfg.OutputDir, cfg2.OutputDir)
	}
	if cfg.ResizeWidth != cfg2.ResizeWidth || cfg.ResizeHeight != cfg2.ResizeHeight {
		t.Errorf("Resize dims mismatch: %dx%d vs %dx%d", cfg.ResizeWidth, cfg.ResizeHeight, cfg2.ResizeWidth, cfg2.ResizeHeight)
	}
	if cfg.Options != cfg2.Options {
		t.Errorf("Options mismatch: %+v vs %+v", cfg.Options, cfg2.Options)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	// Check theme persistence
	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if t1.Background != t2.Background {
		t.Errorf("Theme background mismatch: %v vs %v", t1.Background, t2.Background)
	}
}

func TestExportOptionsClamped(t *testing.T) {
	cfg := New()
	cfg.ResizeWidth = 12
	cfg.ResizeHeight = 9000
	opts := cfg.ExportOptions()
	if opts.Width != 100 {
		t.Errorf("expected width clamped to 100, got %d", opts.Width)
	}
	if opts.Height != 4000 {
		t.Errorf("expected height clamped to 4000, got %d", opts.Height)
	}
}
