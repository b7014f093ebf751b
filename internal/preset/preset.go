// Package preset holds named masks and builds form fields from configuration.
//
// Built-in presets cover common shapes (phone, date, time, card, money, zip).
// Configured presets extend or replace them by name. Compiled masks are
// memoized in a read-through cache keyed by their shape.
package preset

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/zjrosen/maskfield/internal/cachemanager"
	"github.com/zjrosen/maskfield/internal/config"
	"github.com/zjrosen/maskfield/internal/log"
	"github.com/zjrosen/maskfield/internal/mask"
	"github.com/zjrosen/maskfield/internal/ui/form"
	"github.com/zjrosen/maskfield/internal/ui/maskinput"
)

const cacheTTL = 30 * time.Minute

// Shape is the part of a mask that can be shared between fields.
type Shape struct {
	Template    string
	Placeholder string
	Tokens      map[int]string
	Filler      rune
}

// key identifies a compiled mask. fmt prints maps with sorted keys.
func (s Shape) key(notify mask.NotifyMode) string {
	return fmt.Sprintf("%q|%q|%v|%q|%d", s.Template, s.Placeholder, s.Tokens, s.Filler, notify)
}

func (s Shape) options(notify mask.NotifyMode) mask.Options {
	return mask.Options{
		Template:    s.Template,
		Placeholder: s.Placeholder,
		Tokens:      s.Tokens,
		Filler:      s.Filler,
		Notify:      notify,
	}
}

// Preset is a named Shape.
type Preset struct {
	Shape
	Name        string
	Description string
	PasteStrip  string
	Builtin     bool
}

// Builtins returns the built-in presets.
func Builtins() []Preset {
	return []Preset{
		{
			Name:        "phone",
			Description: "Mobile number with country code",
			Shape:       Shape{Template: "+7 (999)-999-99-99", Placeholder: "+7 (___)-___-__-__"},
			PasteStrip:  " ()-",
		},
		{
			Name:        "date",
			Description: "Day, month and year",
			Shape:       Shape{Template: "99/99/9999", Placeholder: "dd/mm/yyyy"},
			PasteStrip:  " ",
		},
		{
			Name:        "time",
			Description: "Hours and minutes",
			Shape:       Shape{Template: "99:99", Placeholder: "hh:mm"},
		},
		{
			Name:        "card",
			Description: "16 digit card number",
			Shape:       Shape{Template: "9999 9999 9999 9999", Filler: '_'},
			PasteStrip:  " -",
		},
		{
			Name:        "money",
			Description: "Dollar amount with one leading digit",
			Shape:       Shape{Tokens: map[int]string{0: "$", 2: "."}},
		},
		{
			Name:        "zip",
			Description: "Five digit postal code",
			Shape:       Shape{Template: "99999", Filler: '_'},
		},
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithNotify sets the notification policy of compiled masks.
func WithNotify(mode mask.NotifyMode) Option {
	return func(r *Registry) {
		r.notify = mode
	}
}

// WithoutCache compiles every mask afresh.
func WithoutCache() Option {
	return func(r *Registry) {
		r.skipCache = true
	}
}

// Registry resolves presets by name and compiles masks.
type Registry struct {
	presets   map[string]Preset
	notify    mask.NotifyMode
	skipCache bool
	masks     *cachemanager.ReadThroughCache[string, *mask.Mask, mask.Options]
}

// New creates a registry of the built-in presets plus configured ones.
// A configured preset replaces a built-in of the same name.
func New(configured []config.PresetConfig, opts ...Option) (*Registry, error) {
	r := &Registry{presets: make(map[string]Preset)}
	for _, opt := range opts {
		opt(r)
	}

	for _, p := range Builtins() {
		p.Builtin = true
		r.presets[p.Name] = p
	}
	for _, pc := range configured {
		tokens, err := pc.TokenTable()
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", pc.Name, err)
		}
		if _, ok := r.presets[pc.Name]; ok {
			log.Info(log.CatConfig, "Configured preset replaces built-in", "preset", pc.Name)
		}
		r.presets[pc.Name] = Preset{
			Name:        pc.Name,
			Description: pc.Description,
			PasteStrip:  pc.PasteStrip,
			Shape: Shape{
				Template:    pc.Template,
				Placeholder: pc.Placeholder,
				Tokens:      tokens,
				Filler:      config.FillerRune(pc.Filler),
			},
		}
	}

	r.masks = cachemanager.NewReadThroughCache[string, *mask.Mask, mask.Options](
		cachemanager.NewInMemoryCacheManager[*mask.Mask]("masks", cacheTTL, cachemanager.DefaultCleanupInterval),
		func(_ context.Context, opts mask.Options) (*mask.Mask, error) {
			return mask.Compile(opts), nil
		},
		r.skipCache,
	)
	return r, nil
}

// Get returns the preset called name.
func (r *Registry) Get(name string) (Preset, bool) {
	p, ok := r.presets[name]
	return p, ok
}

// All returns every preset, built-ins first, each group sorted by name.
func (r *Registry) All() []Preset {
	all := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Builtin != all[j].Builtin {
			return all[i].Builtin
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// Compile returns the mask for shape, from the cache when possible.
func (r *Registry) Compile(ctx context.Context, shape Shape) (*mask.Mask, error) {
	return r.masks.GetWithRefresh(ctx, shape.key(r.notify), shape.options(r.notify), cacheTTL)
}

// Flush drops compiled masks, e.g. after the config changed.
func (r *Registry) Flush(ctx context.Context) error {
	return r.masks.Invalidate(ctx)
}

// Resolve merges a field's own mask settings over its preset.
func (r *Registry) Resolve(fc config.FieldConfig) (Shape, string, error) {
	var (
		shape Shape
		strip string
	)
	if fc.Preset != "" {
		p, ok := r.presets[fc.Preset]
		if !ok {
			return Shape{}, "", fmt.Errorf("field %s: unknown preset %q", fc.Name, fc.Preset)
		}
		shape, strip = p.Shape, p.PasteStrip
	}

	if fc.Template != "" {
		shape.Template = fc.Template
		// A preset placeholder only fits the preset's template.
		shape.Placeholder = ""
	}
	if fc.Placeholder != "" {
		shape.Placeholder = fc.Placeholder
	}
	tokens, err := fc.TokenTable()
	if err != nil {
		return Shape{}, "", fmt.Errorf("field %s: %w", fc.Name, err)
	}
	if len(tokens) > 0 {
		shape.Tokens = tokens
	}
	if f := config.FillerRune(fc.Filler); f != 0 {
		shape.Filler = f
	}
	if fc.PasteStrip != "" {
		strip = fc.PasteStrip
	}
	return shape, strip, nil
}

// Mask compiles the mask of a configured field. Fields with a validate
// pattern get their own mask since the predicate is part of it.
func (r *Registry) Mask(ctx context.Context, fc config.FieldConfig) (*mask.Mask, string, error) {
	shape, strip, err := r.Resolve(fc)
	if err != nil {
		return nil, "", err
	}

	if fc.Validate == "" {
		m, err := r.Compile(ctx, shape)
		return m, strip, err
	}

	re, err := regexp.Compile(fc.Validate)
	if err != nil {
		return nil, "", fmt.Errorf("field %s: invalid validate pattern: %w", fc.Name, err)
	}
	opts := shape.options(r.notify)
	opts.Validate = re.MatchString
	return mask.Compile(opts), strip, nil
}

// Field builds the form row for a configured field. defaultWidth applies
// when the field sets no width of its own.
func (r *Registry) Field(ctx context.Context, fc config.FieldConfig, defaultWidth int) (form.Field, error) {
	m, strip, err := r.Mask(ctx, fc)
	if err != nil {
		return form.Field{}, err
	}

	in := maskinput.New(fc.Name, m)
	if fc.Value != "" && !in.SetValue(fc.Value) {
		log.Warn(log.CatConfig, "Ignoring initial value rejected by validate", "field", fc.Name)
	}
	in.SetPlaceholder(fc.PlaceholderText)
	in.SetAlwaysShowMask(fc.ShowMask())
	in.SetFitWidth(fc.FitWidth)
	switch {
	case fc.Width > 0:
		in.SetWidth(fc.Width)
	case defaultWidth > 0:
		in.SetWidth(defaultWidth)
	}
	if strip != "" {
		in.SetPasteFilter(StripFilter(strip))
	}

	return form.Field{Label: fc.DisplayLabel(), Hint: fc.Hint, Input: in}, nil
}

// Fields builds every configured field.
func (r *Registry) Fields(ctx context.Context, fcs []config.FieldConfig, defaultWidth int) ([]form.Field, error) {
	fields := make([]form.Field, 0, len(fcs))
	for _, fc := range fcs {
		f, err := r.Field(ctx, fc, defaultWidth)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// StripFilter returns a paste filter that drops every rune in chars.
func StripFilter(chars string) func(string) string {
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if strings.ContainsRune(chars, r) {
				return -1
			}
			return r
		}, s)
	}
}
