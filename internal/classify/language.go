// Package classify decides which files count as automated tests.
package classify

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnsupportedLanguage is returned by ParseLanguage for unknown names.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is the closed set of languages whose test files can be recognized.
type Language int

const (
	LanguageUnknown Language = iota
	LanguagePython
	LanguageTypeScript
	LanguageJavaScript
)

// Languages lists every supported language in CLI order.
var Languages = []Language{LanguagePython, LanguageTypeScript, LanguageJavaScript}

// ParseLanguage parses the CLI spelling of a language (py, ts, js).
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "py":
		return LanguagePython, nil
	case "ts":
		return LanguageTypeScript, nil
	case "js":
		return LanguageJavaScript, nil
	default:
		return LanguageUnknown, errors.Wrapf(ErrUnsupportedLanguage, "%q (expected py, ts or js)", s)
	}
}

// String returns the CLI spelling of the language.
func (l Language) String() string {
	switch l {
	case LanguagePython:
		return "py"
	case LanguageTypeScript:
		return "ts"
	case LanguageJavaScript:
		return "js"
	default:
		return "unknown"
	}
}

// Extension returns the source file extension, including the leading dot.
func (l Language) Extension() string {
	switch l {
	case LanguagePython:
		return ".py"
	case LanguageTypeScript:
		return ".ts"
	case LanguageJavaScript:
		return ".js"
	default:
		return ""
	}
}
