package classify

import "strings"

// IsTestFile reports whether filename (a basename) names a test file for lang.
// Unknown languages never match.
func IsTestFile(filename string, lang Language) bool {
	if filename == "" {
		return false
	}

	ext := lang.Extension()
	if ext == "" || !strings.HasSuffix(filename, ext) {
		return false
	}

	switch lang {
	case LanguagePython:
		return strings.HasSuffix(filename, "_test.py") || strings.HasPrefix(filename, "test_")
	case LanguageTypeScript:
		return strings.HasSuffix(filename, ".test.ts") || strings.HasSuffix(filename, ".spec.ts")
	case LanguageJavaScript:
		return strings.HasSuffix(filename, ".test.js") || strings.HasSuffix(filename, ".spec.js")
	default:
		return false
	}
}
