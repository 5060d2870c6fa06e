package player

import (
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength bounds nicknames and guild names, in runes.
const MaxNameLength = 25

// ValidateName normalizes a nickname or guild name and checks it holds only
// letters and single spaces.
func ValidateName(raw string) (string, error) {
	name := strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
	if name == "" {
		return "", apperrors.New(apperrors.CodeInvalidName, "name is empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", apperrors.WithMetadata(apperrors.CodeInvalidName, "name too long",
			map[string]string{"reason": "too_long"})
	}
	for _, r := range name {
		if r != ' ' && !unicode.IsLetter(r) {
			return "", apperrors.WithMetadata(apperrors.CodeInvalidName, "name has non-letters",
				map[string]string{"reason": "letters_only"})
		}
	}
	return name, nil
}

// NameKey is the case-insensitive uniqueness key of a validated name.
func NameKey(name string) string {
	// Casers carry state, so each call gets its own.
	return norm.NFC.String(cases.Fold().String(name))
}
