// Package fallback supplies a static immigration-rights knowledge block when
// live retrieval yields nothing. Selection is a pure keyword match — no I/O —
// so a dead vector backend still produces grounded answers for the queries
// that matter most.
package fallback

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RichieRish05/ImmiAI/internal/rag"
)

// SourceID is the identifier attached to fallback-sourced bundles. The UI
// treats it as "no verifiable sources" and prompts the user to contact a
// professional.
const SourceID = "fallback-kb"

// DefaultKeywords is the default domain keyword set. Any query containing one
// of these (case-insensitive) receives the static knowledge block when
// retrieval came back empty.
var DefaultKeywords = []string{"ice", "immigration", "rights", "documents", "warrant", "attorney"}

// knowledge is the curated rights reference text used when the vector store
// has nothing relevant. It is fixed at compile time, never generated.
const knowledge = `IMMIGRATION RIGHTS KNOWLEDGE:

Basic Rights:
- You have the right to remain silent during any ICE encounter
- You have the right to an attorney during immigration proceedings
- You have rights regardless of your immigration status
- You do not have to answer questions about your immigration status

Home Visits:
- ICE cannot enter your home without a judicial warrant signed by a judge
- Administrative warrants are not sufficient for home entry
- You do not have to open the door unless they show a valid judicial warrant

Documents:
- You are not required to carry immigration documents at all times
- You do not have to show documents unless ICE has a warrant
- If you choose to show documents, only show immigration documents

Workplace Rights:
- ICE can conduct workplace raids
- You have the right to remain silent and ask for an attorney
- Do not run, as this may be seen as suspicious behavior`

// Selector decides whether a query qualifies for the static fallback
// knowledge block. It is immutable after construction and safe for
// concurrent use.
type Selector struct {
	// pattern matches queries against the configured keyword set.
	pattern *regexp.Regexp
}

// NewSelector compiles a Selector from the given keyword list. An empty list
// uses DefaultKeywords. Keywords are matched literally — regex metacharacters
// in a keyword are escaped, not interpreted. A list with no usable keywords is
// a configuration error and should be fatal at startup.
func NewSelector(keywords []string) (*Selector, error) {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	if len(quoted) == 0 {
		return nil, fmt.Errorf("fallback: keyword list is empty")
	}

	pattern, err := regexp.Compile(`(?i)(` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("fallback: invalid keyword pattern: %w", err)
	}

	return &Selector{pattern: pattern}, nil
}

// Select returns the fallback bundle when bundle is empty and the query
// matches the keyword set. In every other case the input bundle is returned
// unchanged. Pure function: no I/O, no side effects.
func (s *Selector) Select(query string, bundle rag.ContextBundle) rag.ContextBundle {
	if bundle.Origin != rag.OriginNone {
		return bundle
	}
	if !s.pattern.MatchString(query) {
		return bundle
	}
	return rag.ContextBundle{
		ContextText: knowledge,
		SourceIDs:   []string{SourceID},
		Origin:      rag.OriginFallback,
	}
}
