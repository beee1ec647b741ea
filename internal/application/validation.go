package application

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "searchRoot" -> "search root")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"query":      "query",
		"searchRoot": "search root",
		"filePath":   "file path",
		"pageNumber": "page number",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateSearchRoot checks that a path is a directory or a single PDF file
func ValidateSearchRoot(fieldName, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s %q does not exist", formatFieldName(fieldName), path),
		}
	}
	if !info.IsDir() && !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s %q is neither a directory nor a PDF", formatFieldName(fieldName), path),
		}
	}
	return nil
}

// ValidatePage checks a 1-based page number against a page count.
// A count below 1 is treated as a single previewable page.
func ValidatePage(page, pageCount int) error {
	if pageCount < 1 {
		pageCount = 1
	}
	if page < 1 || page > pageCount {
		return &ValidationError{
			Field:   "pageNumber",
			Message: fmt.Sprintf("page number %d outside 1-%d", page, pageCount),
		}
	}
	return nil
}
