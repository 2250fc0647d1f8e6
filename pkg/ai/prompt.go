package ai

import (
	"bytes"
	"encoding/json"
	"strings"
)

// GRAPH_CONTEXT_PLACEHOLDER marks where the knowledge-graph document is
// substituted into the instruction template.
const GRAPH_CONTEXT_PLACEHOLDER = "{{GRAPH_CONTEXT}}"

// ContextBlock is one JSON document appended to the system prompt under a
// labeled heading. Empty Data means the block is omitted entirely.
type ContextBlock struct {
	Label string
	Data  json.RawMessage
}

func RenderTemplate(template string, graph json.RawMessage) string {
	if len(graph) == 0 {
		return strings.ReplaceAll(template, GRAPH_CONTEXT_PLACEHOLDER, "")
	}
	return strings.ReplaceAll(template, GRAPH_CONTEXT_PLACEHOLDER, prettyJSON(graph))
}

// BuildMessages assembles the ordered prompt: one system entry built from
// the instructions plus the supplied context blocks (in order), the prior
// turns in chronological order, then the current user turn. Pure function,
// no deduplication or summarization; the caller bounds history growth.
func BuildMessages(instructions string, contexts []ContextBlock, history []Message, userText string) []Message {
	var b strings.Builder
	b.WriteString(instructions)

	for _, c := range contexts {
		if len(c.Data) == 0 {
			continue
		}
		b.WriteString("\n\nKONTEXTUS - ")
		b.WriteString(c.Label)
		b.WriteString(":\n")
		b.WriteString(prettyJSON(c.Data))
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: b.String()})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: userText})
	return messages
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
