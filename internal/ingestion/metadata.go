package ingestion

import (
	"net/url"
	"strings"
)

// InferredMetadata holds the organization and topic inferred from a source
// URL's structure. CLI flags take precedence over inferred values; this is
// the best-effort fallback when the user doesn't specify explicit metadata.
type InferredMetadata struct {
	// Organization is the publishing organization label (ilrc, nilc, aclu,
	// uscis, generic).
	Organization string
	// Topic classifies the content (basic-rights, home-visits, documents,
	// workplace-rights, general).
	Topic string
}

// organizationHosts maps known advocacy and government hostnames to our
// canonical short labels.
var organizationHosts = map[string]string{
	"www.ilrc.org":                     "ilrc",
	"ilrc.org":                         "ilrc",
	"www.nilc.org":                     "nilc",
	"nilc.org":                         "nilc",
	"www.aclu.org":                     "aclu",
	"aclu.org":                         "aclu",
	"www.uscis.gov":                    "uscis",
	"uscis.gov":                        "uscis",
	"www.immigrantdefenseproject.org":  "idp",
	"immigrantdefenseproject.org":      "idp",
	"www.nationalimmigrationproject.org": "nipnlg",
	"nationalimmigrationproject.org":     "nipnlg",
}

// topicKeywords maps path fragments to topic labels, checked in order.
var topicKeywords = []struct {
	fragment string
	topic    string
}{
	{"home", "home-visits"},
	{"raid", "home-visits"},
	{"warrant", "home-visits"},
	{"document", "documents"},
	{"workplace", "workplace-rights"},
	{"worker", "workplace-rights"},
	{"employ", "workplace-rights"},
	{"know-your-rights", "basic-rights"},
	{"rights", "basic-rights"},
}

// InferMetadata inspects the source URL and returns best-effort metadata.
// If the URL doesn't match any known pattern the returned fields contain
// sensible defaults ("generic", "general").
func InferMetadata(rawURL string) InferredMetadata {
	m := InferredMetadata{
		Organization: "generic",
		Topic:        "general",
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return m
	}

	host := strings.ToLower(parsed.Hostname())
	if org, ok := organizationHosts[host]; ok {
		m.Organization = org
	}

	path := strings.ToLower(parsed.Path)
	for _, kw := range topicKeywords {
		if strings.Contains(path, kw.fragment) {
			m.Topic = kw.topic
			break
		}
	}

	return m
}
