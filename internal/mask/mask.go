package mask

import (
	"unicode/utf8"

	"github.com/zjrosen/maskfield/internal/log"
)

// DefaultFiller fills unfilled slots of a synthesized placeholder.
const DefaultFiller = ' '

// NotifyMode selects which committed edits produce a change notification.
type NotifyMode int

const (
	// NotifyBoundary notifies only when a changed value is back to its empty
	// baseline or fills the whole template. Without a template every change
	// notifies.
	NotifyBoundary NotifyMode = iota
	// NotifyEveryCommit notifies on every commit that changes the value.
	NotifyEveryCommit
)

// Options configures a Mask. Every field is optional.
type Options struct {
	// Template holds one class-selector rune per slot, e.g. "+7 (999)-999-99-99".
	Template string
	// Placeholder is the display form of Template: literal runes identical to
	// Template, slot runes replaced by a filler, e.g. "+7 (___)-___-__-__".
	Placeholder string
	// Tokens overrides token derivation with an explicit offset → literal table.
	// A mask with explicit tokens does no class filtering or truncation; a
	// Template given alongside only synthesizes the placeholder.
	Tokens map[int]string
	// Filler is used when Placeholder has to be synthesized. Defaults to a space.
	Filler rune
	// Validate gates every candidate value before it is committed.
	Validate func(value string) bool
	// Notify selects the notification policy.
	Notify NotifyMode
}

// Mask is a compiled, immutable mask configuration. Its edit operations are
// pure: they take the current value and return the next one.
type Mask struct {
	template    []rune
	placeholder string
	tokens      TokenTable
	validate    func(string) bool
	notify      NotifyMode
}

// Compile builds a Mask from opts. It never fails: missing or malformed
// configuration degrades to pass-through masking.
func Compile(opts Options) *Mask {
	filler := opts.Filler
	if filler == 0 {
		filler = DefaultFiller
	}

	m := &Mask{
		template: []rune(opts.Template),
		validate: opts.Validate,
		notify:   opts.Notify,
	}
	if m.validate == nil {
		m.validate = func(string) bool { return true }
	}

	placeholder := opts.Placeholder
	switch {
	case len(opts.Tokens) > 0:
		m.tokens = NewTokenTable(opts.Tokens)
		if len(m.tokens) < len(opts.Tokens) {
			log.Warn(log.CatMask, "Dropped invalid tokens", "given", len(opts.Tokens), "kept", len(m.tokens))
		}
		if placeholder == "" {
			if opts.Template != "" {
				placeholder = BuildPlaceholder(opts.Template, filler)
			} else {
				placeholder = PlaceholderFromTokens(m.tokens, filler)
			}
		}
		// Explicit tokens switch class filtering off; slot indexes would no
		// longer line up with the spliced literals. The template only shapes
		// the placeholder.
		m.template = nil
	case opts.Template != "":
		if placeholder == "" {
			placeholder = BuildPlaceholder(opts.Template, filler)
		} else if n := utf8.RuneCountInString(placeholder); n != len(m.template) {
			log.Warn(log.CatMask, "Placeholder length differs from template",
				"template", opts.Template, "placeholder", placeholder)
		}
		m.tokens = DeriveTokens(opts.Template, placeholder)
	}
	m.placeholder = placeholder

	log.Debug(log.CatMask, "Compiled mask", "template", opts.Template, "tokens", len(m.tokens))
	return m
}

// Template returns the class template, or "" for a template-free mask.
func (m *Mask) Template() string {
	return string(m.template)
}

// Placeholder returns the display placeholder.
func (m *Mask) Placeholder() string {
	return m.placeholder
}

// Tokens returns a copy of the token table.
func (m *Mask) Tokens() TokenTable {
	out := make(TokenTable, len(m.tokens))
	copy(out, m.tokens)
	return out
}

// Leading returns the literal at offset 0: the value of an empty field.
func (m *Mask) Leading() string {
	return m.tokens.Leading()
}

// Apply masks value with this mask's template and tokens.
func (m *Mask) Apply(value string) string {
	return string(applyRunes([]rune(value), m.template, m.tokens))
}

// Initial masks an externally supplied starting value. A value failing
// validation falls back to the empty baseline.
func (m *Mask) Initial(value string) string {
	if v, ok := m.Set(value); ok {
		return v
	}
	return m.Apply("")
}

// Set masks and validates an externally supplied value. It reports false
// when validation rejects it.
func (m *Mask) Set(value string) (string, bool) {
	v := m.Apply(value)
	if !m.validate(v) {
		log.Debug(log.CatMask, "External value rejected by validation", "value", v)
		return "", false
	}
	return v, true
}

// IsEmpty reports whether value holds no user content, only the leading literal.
func (m *Mask) IsEmpty(value string) bool {
	return utf8.RuneCountInString(value) == utf8.RuneCountInString(m.Leading())
}

// IsComplete reports whether value fills every slot of the template.
func (m *Mask) IsComplete(value string) bool {
	return len(m.template) > 0 && utf8.RuneCountInString(value) == len(m.template)
}

// Normalize maps the empty baseline to "" so consumers see "nothing typed"
// uniformly regardless of leading punctuation.
func (m *Mask) Normalize(value string) string {
	if m.IsEmpty(value) {
		return ""
	}
	return value
}

// Display returns the text a field shows: a blurred field holding only its
// leading literal shows nothing.
func (m *Mask) Display(value string, focused bool) string {
	if !focused && value == m.Leading() {
		return ""
	}
	return value
}

// Remaining returns the part of the placeholder not yet covered by value.
func (m *Mask) Remaining(value string) string {
	ph := []rune(m.placeholder)
	n := utf8.RuneCountInString(value)
	if n >= len(ph) {
		return ""
	}
	return string(ph[n:])
}
