// Package mask implements the masking engine behind masked input fields.
//
// A mask is a template of per-position character classes interleaved with
// literal tokens (the "+7 (" and ")-" of a phone number). The engine keeps a
// value consistent with the template on every edit and translates caret
// offsets between two coordinate systems:
//
//   - display space: offsets into the canonical value, tokens included.
//   - raw space: offsets into the value with every token stripped.
//
// Edits are computed on raw content and re-masked, so typing, deleting and
// pasting never leave a token half-destroyed.
//
// All offsets and lengths are rune counts. Nothing in this package performs
// I/O or holds mutable state; callers own the value and caret and commit the
// results of Insert and Remove themselves.
package mask
