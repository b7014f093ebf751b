// Package config provides configuration types and defaults for maskfield.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/zjrosen/maskfield/internal/log"
)

// FieldConfig defines one masked field of the form.
type FieldConfig struct {
	Name  string `mapstructure:"name"`
	Label string `mapstructure:"label"` // defaults to Name
	Hint  string `mapstructure:"hint"`  // shown next to the label

	// Preset names a built-in or configured preset. Template, placeholder,
	// tokens, filler and paste_strip set here override the preset's.
	Preset      string            `mapstructure:"preset"`
	Template    string            `mapstructure:"template"`    // e.g. "+7 (999)-999-99-99"
	Placeholder string            `mapstructure:"placeholder"` // e.g. "+7 (___)-___-__-__"
	Tokens      map[string]string `mapstructure:"tokens"`      // offset -> literal, e.g. {"0": "$"}
	Filler      string            `mapstructure:"filler"`      // single rune, default space

	Value      string `mapstructure:"value"`       // initial value
	Validate   string `mapstructure:"validate"`    // regexp a candidate value must match
	PasteStrip string `mapstructure:"paste_strip"` // runes removed from pasted text

	PlaceholderText string `mapstructure:"placeholder_text"` // shown while empty and blurred
	AlwaysShowMask  *bool  `mapstructure:"always_show_mask"` // nil = true
	FitWidth        bool   `mapstructure:"fit_width"`        // size the field to the mask
	Width           int    `mapstructure:"width"`            // 0 = ui.width
}

// PresetConfig defines a reusable mask.
type PresetConfig struct {
	Name        string            `mapstructure:"name"`
	Description string            `mapstructure:"description"`
	Template    string            `mapstructure:"template"`
	Placeholder string            `mapstructure:"placeholder"`
	Tokens      map[string]string `mapstructure:"tokens"`
	Filler      string            `mapstructure:"filler"`
	PasteStrip  string            `mapstructure:"paste_strip"`
}

// Config holds all configuration options for maskfield.
type Config struct {
	Fields  []FieldConfig   `mapstructure:"fields"`
	Presets []PresetConfig  `mapstructure:"presets"`
	UI      UIConfig        `mapstructure:"ui"`
	Theme   ThemeConfig     `mapstructure:"theme"`
	Tracing TracingConfig   `mapstructure:"tracing"`
	Store   StoreConfig     `mapstructure:"store"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	Width         int    `mapstructure:"width"`          // default field width
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// ThemeConfig holds theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base: "default" or "high-contrast".
	Preset string `mapstructure:"preset"`

	// Colors overrides individual color tokens, e.g. "text.literal": "#FF0000".
	// Dotted keys need viper's "::" key delimiter.
	Colors map[string]string `mapstructure:"colors"`
}

// TracingConfig holds distributed tracing configuration for mask application.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/maskfield/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// StoreConfig holds submission history storage configuration.
type StoreConfig struct {
	// Path is the SQLite database file. Empty disables history.
	Path string `mapstructure:"path"`
}

// ShowMask reports whether the mask placeholder stays visible (defaults to true if nil).
func (f FieldConfig) ShowMask() bool {
	return f.AlwaysShowMask == nil || *f.AlwaysShowMask
}

// DisplayLabel returns the label, falling back to the field name.
func (f FieldConfig) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// TokenTable parses the configured tokens into offset -> literal.
func (f FieldConfig) TokenTable() (map[int]string, error) {
	return parseTokens(f.Tokens)
}

// TokenTable parses the configured tokens into offset -> literal.
func (p PresetConfig) TokenTable() (map[int]string, error) {
	return parseTokens(p.Tokens)
}

func parseTokens(tokens map[string]string) (map[int]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	out := make(map[int]string, len(tokens))
	for k, v := range tokens {
		offset, err := strconv.Atoi(k)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("token offset %q must be a non-negative integer", k)
		}
		out[offset] = v
	}
	return out, nil
}

// FillerRune returns the configured filler, or 0 when unset.
func FillerRune(filler string) rune {
	r, _ := utf8.DecodeRuneInString(filler)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/maskfield/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "maskfield", "traces", "traces.jsonl")
}

// DefaultStorePath returns the default submission database path.
// Returns ~/.config/maskfield/history.db or empty string if home dir unavailable.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "maskfield", "history.db")
}

// DefaultFields returns the fields shown when none are configured.
func DefaultFields() []FieldConfig {
	return []FieldConfig{
		{Name: "phone", Label: "Phone", Preset: "phone"},
		{Name: "birthday", Label: "Birthday", Preset: "date", Hint: "dd/mm/yyyy"},
	}
}

// GetFields returns the configured fields, or DefaultFields() if none configured.
func (c Config) GetFields() []FieldConfig {
	if len(c.Fields) > 0 {
		return c.Fields
	}
	return DefaultFields()
}

// ValidateFields checks field configuration for errors.
// Returns nil if fields are valid or empty (will use defaults).
func ValidateFields(fields []FieldConfig) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("field %d (%s): duplicate name", i, f.Name)
		}
		seen[f.Name] = true

		if f.Preset == "" && f.Template == "" && len(f.Tokens) == 0 {
			return fmt.Errorf("field %d (%s): one of preset, template or tokens is required", i, f.Name)
		}
		if err := validateMask(f.Template, f.Placeholder, f.Tokens, f.Filler); err != nil {
			return fmt.Errorf("field %d (%s): %w", i, f.Name, err)
		}
		if f.Validate != "" {
			if _, err := regexp.Compile(f.Validate); err != nil {
				return fmt.Errorf("field %d (%s): invalid validate pattern: %w", i, f.Name, err)
			}
		}
		if f.Width < 0 {
			return fmt.Errorf("field %d (%s): width must not be negative, got %d", i, f.Name, f.Width)
		}
	}
	return nil
}

// ValidatePresets checks preset configuration for errors.
func ValidatePresets(presets []PresetConfig) error {
	seen := make(map[string]bool, len(presets))
	for i, p := range presets {
		if p.Name == "" {
			return fmt.Errorf("preset %d: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("preset %d (%s): duplicate name", i, p.Name)
		}
		seen[p.Name] = true

		if p.Template == "" && len(p.Tokens) == 0 {
			return fmt.Errorf("preset %d (%s): template or tokens is required", i, p.Name)
		}
		if err := validateMask(p.Template, p.Placeholder, p.Tokens, p.Filler); err != nil {
			return fmt.Errorf("preset %d (%s): %w", i, p.Name, err)
		}
	}
	return nil
}

// validateMask rejects settings the engine would otherwise silently degrade.
func validateMask(template, placeholder string, tokens map[string]string, filler string) error {
	if placeholder != "" && template != "" &&
		utf8.RuneCountInString(placeholder) != utf8.RuneCountInString(template) {
		return fmt.Errorf("placeholder %q must be as long as template %q", placeholder, template)
	}
	if filler != "" && utf8.RuneCountInString(filler) != 1 {
		return fmt.Errorf("filler must be a single character, got %q", filler)
	}
	if _, err := parseTokens(tokens); err != nil {
		return err
	}
	return nil
}

// ValidateUI checks UI configuration for errors.
func ValidateUI(ui UIConfig) error {
	if ui.Width < 0 {
		return fmt.Errorf("ui.width must not be negative, got %d", ui.Width)
	}
	switch ui.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if err := ValidateFields(cfg.Fields); err != nil {
		return err
	}
	if err := ValidatePresets(cfg.Presets); err != nil {
		return err
	}
	if err := ValidateUI(cfg.UI); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Fields: DefaultFields(),
		UI: UIConfig{
			Width:         40,
			MarkdownStyle: "dark",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# maskfield configuration

# Fields shown by 'maskfield', in order.
fields:
  - name: phone
    label: Phone
    preset: phone          # run 'maskfield presets' to list presets

  - name: birthday
    label: Birthday
    hint: dd/mm/yyyy
    preset: date

# Field options:
#   name: Key used for output and history (required, unique)
#   label: Title of the field box (default: name)
#   hint: Extra text next to the label
#   preset: Built-in or configured preset
#   template: Slot classes: digits match digits, letters or '_' match
#             letters and digits, anything else is a literal
#   placeholder: Same length as template; positions equal to the template
#                are literals, the rest show what is left to type
#   tokens: Explicit literals by offset, e.g. { "0": "$", "2": "." }
#   filler: Character for unfilled slots when placeholder is omitted
#   value: Initial value
#   validate: Regular expression every edited value must match
#   paste_strip: Characters removed from pasted text, e.g. " ()-"
#   placeholder_text: Shown while the field is empty and unfocused
#   always_show_mask: Keep the mask visible when empty (default: true)
#   fit_width: Size the field to its mask
#   width: Field width (default: ui.width)

# Custom presets usable from fields:
# presets:
#   - name: iban-de
#     description: German IBAN
#     template: "DE99 9999 9999 9999 9999 99"
#     placeholder: "DE__ ____ ____ ____ ____ __"
#     paste_strip: " "

ui:
  width: 40
  # markdown_style: dark  # Markdown rendering style: "dark" (default) or "light"

# theme:
#   preset: high-contrast  # default or high-contrast
#   colors:
#     text.literal: "#89B4FA"

# Submission history (also --db)
# store:
#   path: ~/.config/maskfield/history.db

# Feature flags
# flags:
#   notify-every-commit: false  # Report every edit, not just cleared/complete values
#   mouse-focus: true           # Click a field to focus it

# Distributed tracing for 'maskfield apply'
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/maskfield/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
