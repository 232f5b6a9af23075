// File: internal/teamserver/rule.go
package teamserver

import "strings"

// Rule is an Assess policy rule as returned by the platform's rules API.
// Rules are read from the platform and never created by this tool; the only
// field it ever writes back is the reference list.
type Rule struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Severity    string   `json:"severity"`
	Enabled     bool     `json:"enabled"`
	CWE         string   `json:"cwe"`
	OWASP       string   `json:"owasp"`
	Languages   []string `json:"languages"`
	References  []string `json:"references"`
}

// CWENumber extracts the numeric CWE identifier from the rule's CWE link.
// The API returns a MITRE URL such as
// "https://cwe.mitre.org/data/definitions/79.html"; the number is the last
// path segment with the ".html" suffix stripped. Returns "" when the rule
// carries no CWE link.
func (r Rule) CWENumber() string {
	if r.CWE == "" {
		return ""
	}
	seg := r.CWE
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	return strings.TrimSuffix(seg, ".html")
}
