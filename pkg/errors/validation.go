package errors

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxExpressionBytes bounds the size of an expression accepted from users.
const MaxExpressionBytes = 64 << 10

// ValidateExpression checks raw expression text before it reaches the
// parser:
//   - No empty or whitespace-only input
//   - Valid UTF-8
//   - At most MaxExpressionBytes
//   - No control characters other than whitespace
func ValidateExpression(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return New(ErrCodeInvalidExpression, "expression cannot be empty")
	}

	if len(expr) > MaxExpressionBytes {
		return New(ErrCodeExpressionTooLarge, "expression too long (%d bytes, max %d)", len(expr), MaxExpressionBytes)
	}

	if !utf8.ValidString(expr) {
		return New(ErrCodeInvalidExpression, "expression is not valid UTF-8")
	}

	for i, r := range expr {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return New(ErrCodeInvalidExpression, "expression contains control character %U at offset %d", r, i)
		}
	}

	return nil
}

// ValidatePath validates an output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - No ".." path elements
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, elem := range strings.Split(filepath.ToSlash(path), "/") {
		if elem == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
