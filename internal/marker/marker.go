// Package marker implements the in-band source annotation protocol shared
// between the prompt assembler and the chat UI. The model is instructed to
// end every response with `[SOURCES:id1,id2,...]`; the UI strips that marker
// before rendering and uses the ids to show source tags.
package marker

import (
	"regexp"
	"strings"
)

// FallbackSourceID is the identifier the fallback knowledge block carries.
// A marker containing only this id counts as unverifiable.
const FallbackSourceID = "fallback-kb"

// pattern matches the marker anywhere in the text. The protocol puts it last,
// but the parser tolerates trailing whitespace or stray prose after it and
// still recovers the ids.
var pattern = regexp.MustCompile(`\[SOURCES:(.*?)\]`)

// Format renders the marker for the given source identifiers.
// An empty list produces `[SOURCES:]`.
func Format(ids []string) string {
	return "[SOURCES:" + strings.Join(ids, ",") + "]"
}

// Parse extracts the source marker from a complete response text.
// It returns the text with the marker removed, the parsed identifiers, and
// whether a marker was found. An absent or malformed marker yields
// ok=false with no ids — callers must treat that as "no sources" rather
// than attempting recovery.
func Parse(text string) (body string, ids []string, ok bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return text, nil, false
	}

	for _, id := range strings.Split(m[1], ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	body = strings.TrimSpace(pattern.ReplaceAllString(text, ""))
	return body, ids, true
}

// Verifiable reports whether the id list names real knowledge sources.
// An empty list, or a list containing only the fallback id, is not
// verifiable — the UI shows an unverified-content affordance instead.
func Verifiable(ids []string) bool {
	for _, id := range ids {
		if id != FallbackSourceID {
			return true
		}
	}
	return false
}
