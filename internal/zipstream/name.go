package zipstream

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Characters that are unsafe in a ZIP entry path on at least one common
// platform or extractor.
const forbiddenNameChars = "\\?%*:|\"<>"

// validateName reports whether name is acceptable as a ZIP entry path:
// non-empty valid UTF-8, forward slashes as separators, every segment
// non-empty and free of characters from forbiddenNameChars. It performs no
// I/O and must be called before any bytes for the entry are written.
func validateName(name string) error {
	if name == "" {
		return &NameError{Name: name, Reason: "name is empty"}
	}
	if !utf8.ValidString(name) {
		return &NameError{Name: name, Reason: "name is not valid UTF-8"}
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == "" {
			return &NameError{Name: name, Reason: "empty path segment"}
		}
		if i := strings.IndexAny(segment, forbiddenNameChars); i >= 0 {
			return &NameError{Name: name, Reason: "forbidden character " + strconv.Quote(segment[i:i+1])}
		}
	}
	return nil
}
