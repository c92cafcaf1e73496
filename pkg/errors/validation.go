package errors

import (
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal when joined with
// the clone directory, and names that pacman itself would never accept.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, backslash)
//   - No leading dot or hyphen
//   - Maximum length of 256 characters
//
// Version-comparison suffixes should be stripped before validation.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains control characters")
		}
	}

	// Pacman package names never start with a dot or hyphen.
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "-") {
		return New(ErrCodeInvalidPackage, "package name cannot start with %q", name[:1])
	}

	// Clone paths are built by joining the clone root with the package
	// name, so anything path-like is rejected outright.
	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid sequence: %q", pattern)
		}
	}

	return nil
}
