package promptblocks

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Composition document format constants
const (
	// YAMLFrontmatterDelimiter separates frontmatter from the body.
	YAMLFrontmatterDelimiter = "---"

	// DefaultMaxFrontmatterSize limits frontmatter to prevent abuse.
	DefaultMaxFrontmatterSize = 64 * 1024 // 64KB

	ErrMsgFrontmatterTooLarge = "composition frontmatter exceeds size limit"
	ErrMsgFrontmatterRead     = "composition document read failed"
)

// ParseCompositionDocument parses a composition document (YAML frontmatter +
// storage-text body) into a Composition. The frontmatter carries the name,
// variable values, and tags; everything after the closing --- delimiter
// becomes Content. A document without frontmatter is treated as pure body.
func ParseCompositionDocument(data []byte) (*Composition, error) {
	if len(data) == 0 {
		return nil, NewFrontmatterError(ErrMsgDocumentEmpty, nil)
	}

	content := string(data)

	// Trim BOM and leading whitespace
	content = strings.TrimLeft(content, "\xef\xbb\xbf \t")

	// Check for frontmatter
	if !strings.HasPrefix(content, YAMLFrontmatterDelimiter) {
		// No frontmatter, entire content is the storage text
		return &Composition{Content: content}, nil
	}

	// Skip opening delimiter and newline
	afterOpening := content[len(YAMLFrontmatterDelimiter):]
	if len(afterOpening) > 0 && afterOpening[0] == '\n' {
		afterOpening = afterOpening[1:]
	} else if len(afterOpening) > 1 && afterOpening[0] == '\r' && afterOpening[1] == '\n' {
		afterOpening = afterOpening[2:]
	}

	// Find closing delimiter
	closeIdx := strings.Index(afterOpening, "\n"+YAMLFrontmatterDelimiter)
	if closeIdx == -1 {
		return nil, NewFrontmatterError(ErrMsgFrontmatterUnclosed, nil)
	}

	// Extract frontmatter YAML
	fmYAML := afterOpening[:closeIdx]

	// Check size limit
	if len(fmYAML) > DefaultMaxFrontmatterSize {
		return nil, NewFrontmatterError(ErrMsgFrontmatterTooLarge, nil)
	}

	// Extract body (after closing delimiter and newline)
	bodyStart := closeIdx + len("\n"+YAMLFrontmatterDelimiter)
	body := ""
	if bodyStart < len(afterOpening) {
		body = afterOpening[bodyStart:]
		if len(body) > 0 && body[0] == '\n' {
			body = body[1:]
		} else if len(body) > 1 && body[0] == '\r' && body[1] == '\n' {
			body = body[2:]
		}
	}

	var comp Composition
	if err := yaml.Unmarshal([]byte(fmYAML), &comp); err != nil {
		return nil, NewFrontmatterError(ErrMsgFrontmatterParse, err)
	}

	comp.Content = body
	return &comp, nil
}

// ParseCompositionFile reads a file and parses it as a composition document.
func ParseCompositionFile(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewFrontmatterError(ErrMsgFrontmatterRead, err)
	}
	return ParseCompositionDocument(data)
}

// MustParseCompositionDocument parses a composition document and panics on
// error.
func MustParseCompositionDocument(data []byte) *Composition {
	comp, err := ParseCompositionDocument(data)
	if err != nil {
		panic(err)
	}
	return comp
}

// Serialize outputs the composition as a YAML frontmatter + body document.
// Only the portable fields (name, variables, tags) go into the frontmatter;
// store-owned fields like ID and Version stay out so the document survives a
// round trip through any store.
func (c *Composition) Serialize() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	yamlBytes, err := yaml.Marshal(c)
	if err != nil {
		return nil, NewFrontmatterError(ErrMsgSerializeYAML, err)
	}

	var sb strings.Builder
	sb.WriteString(YAMLFrontmatterDelimiter)
	sb.WriteString("\n")
	sb.Write(yamlBytes)
	sb.WriteString(YAMLFrontmatterDelimiter)
	sb.WriteString("\n")
	if c.Content != "" {
		sb.WriteString(c.Content)
	}

	return []byte(sb.String()), nil
}

// WriteFile serializes the composition and writes it to the given path.
func (c *Composition) WriteFile(path string) error {
	data, err := c.Serialize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, fsFilePerm)
}
