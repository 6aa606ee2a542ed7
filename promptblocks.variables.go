package promptblocks

import (
	"regexp"
	"strings"
)

// variablePattern matches {{name}} placeholders. The inner group is one or
// more non-} characters; surrounding whitespace inside the braces is trimmed
// after matching. Unmatched {{ without a closing }} simply produces no match.
var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ExtractVariables returns the unique variable names referenced by text, in
// first-occurrence order. Names are trimmed; nested braces are not supported.
// Returns an empty slice when text contains no placeholders.
func ExtractVariables(text string) []string {
	matches := variablePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []string{}
	}

	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ReplaceVariables substitutes every {{key}} placeholder with its value from
// values. Matching tolerates whitespace inside the braces. Substitution is
// literal and non-recursive; placeholders whose key is absent from values are
// left untouched.
func ReplaceVariables(text string, values map[string]string) string {
	if text == "" || len(values) == 0 {
		return text
	}

	result := text
	for key, value := range values {
		pattern := regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(key) + `\s*\}\}`)
		result = pattern.ReplaceAllLiteralString(result, value)
	}
	return result
}

// VariableValidationResult reports which referenced variables lack values.
type VariableValidationResult struct {
	// IsValid is true when every referenced variable has a non-empty value.
	IsValid bool

	// MissingVariables lists referenced variables that are absent from the
	// value map or mapped to an empty string, in first-occurrence order.
	MissingVariables []string
}

// ValidateVariables checks that every variable referenced by text has a
// non-empty value. Missing variables never block a save; the result is for
// warning display.
func ValidateVariables(text string, values map[string]string) *VariableValidationResult {
	var missing []string
	for _, name := range ExtractVariables(text) {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	if missing == nil {
		missing = []string{}
	}
	return &VariableValidationResult{
		IsValid:          len(missing) == 0,
		MissingVariables: missing,
	}
}
