// File: internal/reference/builder.go
// Package reference turns training-content lookups into the HTML reference
// lines written back to platform rules, and owns the static language,
// reserve and override tables that steer those lookups.
package reference

import (
	"github.com/secwarden/rulelink-cli/internal/scw"
	"github.com/secwarden/rulelink-cli/internal/teamserver"
)

// Markup chrome for the generated reference lines. The platform renders
// references as raw HTML inside the rule's "How to Fix" panel.
const (
	videoChrome    = "<br>Watch a video on this topic with Secure Code Warrior (beta):<br>"
	exerciseChrome = "<br>Complete a training exercise on this topic for your language using Secure Code Warrior (beta):<br>"
)

// Build renders the full reference list for one rule.
//
// content may be nil (no catalog hit); trialURL is the lookup URL the content
// came from and parameterizes the per-language deep links. An exercise link
// is emitted only for languages the rule itself is scanned in AND the content
// has an exercise for; a rule flagged for .NET agents must not link Java
// training however rich the catalog entry is. The result is deterministic for
// fixed inputs: the video line first, then exercise links in the language
// table's canonical order, then any language-agnostic reading links. An empty
// slice means the rule has nothing to link and its references will be cleared
// by the write-back.
func Build(rule teamserver.Rule, content *scw.Content, trialURL string) []string {
	refs := []string{}

	for _, m := range LanguageMappings() {
		if !ruleHasLanguage(rule.Languages, m.Platform) {
			continue
		}
		if !content.HasExerciseFor(m.Key) {
			continue
		}
		link := "<b>" + m.Platform + "</b>: " + scw.ExerciseURL(trialURL, m.Platform)
		if len(refs) == 0 {
			link = exerciseChrome + link
		}
		refs = append(refs, link)
	}

	for _, u := range content.LanguageAgnosticLinks() {
		// The platform renders these as bare URLs, so anything it already
		// shows elsewhere on the rule page is just noise.
		if ExcludedReference(u) || u == rule.OWASP {
			continue
		}
		refs = append(refs, u)
	}

	if video := videoLink(rule.Name, content); video != "" {
		refs = append([]string{videoChrome + video}, refs...)
	}

	return refs
}

func ruleHasLanguage(ruleLanguages []string, platformLang string) bool {
	for _, l := range ruleLanguages {
		if l == platformLang {
			return true
		}
	}
	return false
}

// videoLink picks the video URL for a rule: the catalog's own video when the
// lookup returned one, otherwise the pinned reserve. A live catalog video
// always wins over the reserve.
func videoLink(ruleName string, content *scw.Content) string {
	if v := content.Video(); v != "" {
		return v
	}
	if v, ok := VideoReserve(ruleName); ok {
		return v
	}
	return ""
}
