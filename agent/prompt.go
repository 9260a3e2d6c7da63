package agent

import (
	"fmt"
	"strings"

	"github.com/garyhost2/Strong-gradient/classify"
	"github.com/garyhost2/Strong-gradient/graph"
)

const promptInstruction = "Please provide a comprehensive response integrating information from the context. Be concise but thorough in your analysis."

// BuildPrompt derives the backend prompt deterministically from the
// classification and the fetched context. Identical inputs always produce
// byte-identical prompts, so both backends of an agent receive the same text.
func BuildPrompt(classification classify.Classification, items []graph.ContextItem) string {
	rendered := make([]string, len(items))
	for i, item := range items {
		rendered[i] = item.Render()
	}

	return fmt.Sprintf(`User query classification: %s (confidence: %.2f)

Relevant context from knowledge graph:
%s

%s`, classification.Label, classification.Score, strings.Join(rendered, "\n"), promptInstruction)
}
