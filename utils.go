package sharelink

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxOwnerIDLength bounds owner identifiers.
const MaxOwnerIDLength = 128

const maxExtensionLength = 16

// IsValidOwnerID reports whether id can name an owner and its storage directory.
// It checks that the id:
//   - is not empty and at most MaxOwnerIDLength bytes
//   - is not "." or ".."
//   - does not contain "/" or "\"
//   - is valid UTF-8
//   - does not contain null bytes, control characters, DEL, or whitespace
func IsValidOwnerID(id string) bool {
	if id == "" || len(id) > MaxOwnerIDLength {
		return false
	}

	if id == "." || id == ".." {
		return false
	}

	if strings.ContainsAny(id, `/\`) {
		return false
	}

	if !utf8.ValidString(id) {
		return false
	}

	for _, r := range id {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

// SafeExtension returns the extension of filename (with the dot) when it is a
// short run of ASCII letters and digits, and "" otherwise.
func SafeExtension(filename string) string {
	ext := filepath.Ext(filepath.Base(strings.ReplaceAll(filename, `\`, "/")))
	if len(ext) < 2 || len(ext) > maxExtensionLength {
		return ""
	}

	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}

	return ext
}
