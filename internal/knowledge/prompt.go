package knowledge

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/knowledged/internal/registry"
	"github.com/fyrsmithlabs/knowledged/internal/vectorstore"
)

// BuildSystemPrompt assembles the grounding instructions for the generator:
// the catalog of known sources, the retrieved fragments verbatim in ranking
// order, and the rules that keep the answer anchored to them.
func BuildSystemPrompt(sources []registry.Source, fragments []vectorstore.SearchResult) string {
	var b strings.Builder

	b.WriteString("You are a knowledge base assistant. Answer questions using only the context provided below.\n\n")

	b.WriteString("Known sources:\n")
	if len(sources) == 0 {
		b.WriteString("(none ingested yet)\n")
	} else {
		for _, s := range sources {
			fmt.Fprintf(&b, "- [%s] %s\n", s.Type, s.Title)
		}
	}

	b.WriteString("\nContext fragments, most relevant first:\n")
	if len(fragments) == 0 {
		b.WriteString("(no relevant fragments found)\n")
	} else {
		for i, f := range fragments {
			title, _ := f.Metadata[vectorstore.MetaTitle].(string)
			typ, _ := f.Metadata[vectorstore.MetaSourceType].(string)
			fmt.Fprintf(&b, "\n[%d] source: %s (%s)\n%s\n", i+1, title, typ, f.Content)
		}
	}

	b.WriteString(`
Rules:
- Answer only from the context fragments above.
- If the context does not contain enough information, say so explicitly.
- Attribute facts to their source by title when possible.
- Do not speculate or bring in outside knowledge.`)

	return b.String()
}
