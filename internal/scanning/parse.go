package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// invoiceTranscribePrompt is the shared prompt used by all LLM providers for transcribing invoices
const invoiceTranscribePrompt = `You are transcribing a scanned invoice. Read all text in the image and copy it out line by line, exactly as printed.

Return ONLY a valid JSON array of strings, one string per printed line, in reading order (top to bottom, left to right):
["first line", "second line", ...]

Important:
- Do not correct, translate, reformat or summarize anything
- Keep numbers exactly as written, including "," or "." decimal separators
- Keep item numbers such as "1." or "2)" at the start of their line
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// parseLinesJSON extracts the JSON array of lines from an LLM response
func parseLinesJSON(text string) ([]string, error) {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "[")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	endIdx := strings.LastIndex(text, "]")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON array in response")
	}

	var lines []string
	if err := json.Unmarshal([]byte(text[startIdx:endIdx+1]), &lines); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	return lines, nil
}
