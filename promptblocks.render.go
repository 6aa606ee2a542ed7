package promptblocks

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// BlockResolver looks up a block's canonical current text by ID. The render
// path treats it as a synchronous lookup; callers that fetch asynchronously
// should pre-resolve and serve from memory. A failed or missing lookup is a
// soft failure: the renderer degrades that element to empty content.
type BlockResolver interface {
	ResolveBlock(ctx context.Context, blockID int64) (string, error)
}

// BlockResolverFunc adapts a function to the BlockResolver interface.
type BlockResolverFunc func(ctx context.Context, blockID int64) (string, error)

// ResolveBlock calls the function.
func (f BlockResolverFunc) ResolveBlock(ctx context.Context, blockID int64) (string, error) {
	return f(ctx, blockID)
}

// originalTextPattern matches the {{originalText}} structural self-reference,
// tolerating whitespace inside the braces like any other placeholder.
var originalTextPattern = regexp.MustCompile(`\{\{\s*` + OriginalTextPlaceholder + `\s*\}\}`)

// Render folds the document and variable values into final text for the
// clipboard or storage: each element renders in ascending order, fragments
// that come out blank are dropped, and the survivors join with a blank line.
//
// Block elements render their override body when overridden, otherwise the
// canonical block content from the engine's BlockResolver. Inside an
// override body every {{originalText}} occurrence expands to the canonical
// content before normal variable substitution; it is a structural
// self-reference, not a user variable.
//
// A nil document is the only error condition. Missing blocks, missing
// variable values, and resolver failures all degrade softly.
func (e *Engine) Render(ctx context.Context, doc *Document, values map[string]string) (string, error) {
	fragments, err := e.renderFragments(ctx, doc, values)
	if err != nil {
		return "", err
	}

	kept := fragments[:0]
	for _, f := range fragments {
		if strings.TrimSpace(f) != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, e.config.separator), nil
}

// Preview renders like Render but keeps blank fragments, giving the editor
// visual feedback on empty slots.
func (e *Engine) Preview(ctx context.Context, doc *Document, values map[string]string) (string, error) {
	fragments, err := e.renderFragments(ctx, doc, values)
	if err != nil {
		return "", err
	}
	return strings.Join(fragments, e.config.separator), nil
}

// renderFragments renders each element to its final text in ascending order.
func (e *Engine) renderFragments(ctx context.Context, doc *Document, values map[string]string) ([]string, error) {
	if doc == nil {
		return nil, NewNilDocumentError()
	}

	fragments := make([]string, 0, doc.Len())
	for _, el := range doc.Elements() {
		switch el := el.(type) {
		case *TextElement:
			fragments = append(fragments, ReplaceVariables(el.Content, values))

		case *BlockElement:
			fragments = append(fragments, e.renderBlock(ctx, el, values))
		}
	}
	return fragments, nil
}

// renderBlock resolves a block element to its substituted body.
func (e *Engine) renderBlock(ctx context.Context, el *BlockElement, values map[string]string) string {
	canonical := e.resolveCanonical(ctx, el.BlockID)

	body, overridden := el.EffectiveOverride()
	if !overridden {
		body = canonical
	} else if originalTextPattern.MatchString(body) {
		body = originalTextPattern.ReplaceAllLiteralString(body, canonical)
	}

	return ReplaceVariables(body, values)
}

// DocumentVariables returns the unique variable names in use across the
// document, in first-occurrence order: from text content and from each
// block's resolved body (override or canonical). The {{originalText}}
// self-reference is structural and never reported as a variable.
func (e *Engine) DocumentVariables(ctx context.Context, doc *Document) ([]string, error) {
	if doc == nil {
		return nil, NewNilDocumentError()
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, el := range doc.Elements() {
		var content string
		switch el := el.(type) {
		case *TextElement:
			content = el.Content
		case *BlockElement:
			body, overridden := el.EffectiveOverride()
			if !overridden {
				body = e.resolveCanonical(ctx, el.BlockID)
			}
			content = body
		}
		for _, name := range ExtractVariables(content) {
			if name == OriginalTextPlaceholder || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// ValidateDocumentVariables checks the document's variables in use against
// the value map, reporting names that are absent or empty.
func (e *Engine) ValidateDocumentVariables(ctx context.Context, doc *Document, values map[string]string) (*VariableValidationResult, error) {
	names, err := e.DocumentVariables(ctx, doc)
	if err != nil {
		return nil, err
	}

	missing := []string{}
	for _, name := range names {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return &VariableValidationResult{
		IsValid:          len(missing) == 0,
		MissingVariables: missing,
	}, nil
}

// resolveCanonical fetches the canonical block content, degrading to empty
// on a missing resolver, a resolver error, or an absent block.
func (e *Engine) resolveCanonical(ctx context.Context, blockID int64) string {
	if e.config.resolver == nil {
		e.logger.Debug("no block resolver configured, rendering block as empty",
			zap.Int64(MetaKeyBlockID, blockID))
		return ""
	}

	content, err := e.config.resolver.ResolveBlock(ctx, blockID)
	if err != nil {
		e.logger.Debug("block resolution failed, rendering block as empty",
			zap.Int64(MetaKeyBlockID, blockID),
			zap.Error(err))
		return ""
	}
	return content
}
