package mask

import "unicode"

// Class is the character class a template slot accepts.
type Class int

// Classes are tested in declaration order: a digit is ClassDigit even though
// it is also a word character.
const (
	ClassDigit Class = iota
	ClassWord
	ClassOther
)

func (c Class) String() string {
	switch c {
	case ClassDigit:
		return "digit"
	case ClassWord:
		return "word"
	default:
		return "other"
	}
}

// Classify returns the class of r.
func Classify(r rune) Class {
	switch {
	case unicode.IsDigit(r):
		return ClassDigit
	case r == '_' || unicode.IsLetter(r):
		return ClassWord
	default:
		return ClassOther
	}
}

// SameClass reports whether a and b belong to the same class.
func SameClass(a, b rune) bool {
	return Classify(a) == Classify(b)
}
