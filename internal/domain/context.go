package domain

// ContextSnippet is one grounding row reduced to a "label: content" line for
// prompt interpolation. Snippets are request-scoped and never persisted.
type ContextSnippet struct {
	Label   string
	Content string
}
