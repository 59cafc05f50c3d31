package assistant

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*([\\[{].*?[\\]}])\\s*```")

// ExtractJSON locates an embedded JSON payload in free-form model text.
// A fenced code block always wins over surrounding prose; failing that, the
// span from the first '{' to the last '}' is tried. The result is nil when
// no candidate parses: malformed output degrades to showing the raw text,
// it never becomes an error.
func ExtractJSON(text string) json.RawMessage {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		if candidate := []byte(m[1]); json.Valid(candidate) {
			return candidate
		}
		return nil
	}

	// greedy fallback: can over-match across multiple brace-delimited
	// segments, so anything found here still has to pass the schema gate
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}
	if candidate := []byte(text[start : end+1]); json.Valid(candidate) {
		return candidate
	}
	return nil
}
