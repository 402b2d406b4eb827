package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `You summarise clinical and administrative documents for reviewers.

Return a single JSON object with these fields:
- "summary": the overall narrative summary (string). Organise it under short headings that end with a colon, and use "- " bullet lines for findings.
- "sections": an object mapping section labels (for example "history", "plan") to their summary text. Use {} if the document has no distinct sections.
- "diagnoses": diagnoses mentioned in the document, one per line (string, "" if none)
- "providers": clinicians and facilities mentioned, one per line (string, "" if none)
- "medications": medications with dose when stated, one per line (string, "" if none)

Rules:
- Only report what the document states. Do not infer diagnoses.
- Keep the document's own terminology so the summary can be checked against it.
- Cover every part of the document, not just the beginning.

Respond with ONLY the JSON object, no other text.`

// buildPrompt wraps a chunk of document text with its position in the
// document when the document was split.
func buildPrompt(chunk string, part, total int) string {
	var sb strings.Builder
	if total > 1 {
		fmt.Fprintf(&sb, "This is part %d of %d of a longer document. Summarise this part only.\n", part, total)
	}
	sb.WriteString("---\n")
	sb.WriteString(chunk)
	return sb.String()
}
