// File: internal/reference/builder_test.go
package reference

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secwarden/rulelink-cli/internal/scw"
	"github.com/secwarden/rulelink-cli/internal/teamserver"
)

const trialURL = "https://integration-api.securecodewarrior.com/api/v1/trial?Id=contrast&MappingKey=79&MappingList=cwe"

func ruleNamed(name string, langs ...string) teamserver.Rule {
	return teamserver.Rule{Name: name, Languages: langs}
}

func contentWith(videos []string, langs ...string) *scw.Content {
	c := &scw.Content{Videos: videos}
	for _, l := range langs {
		c.Links = append(c.Links, scw.Link{
			URL:                "https://portal.securecodewarrior.com/" + l,
			LanguageFrameworks: []string{l},
		})
	}
	return c
}

// Rule scanned in Java and Python, content with a live video and an exercise
// for java only; Python must produce no link.
func TestBuild_VideoAndSingleLanguage(t *testing.T) {
	content := contentWith([]string{"https://media.securecodewarrior.com/v2/xss.mp4"}, "java:spring")

	refs := Build(ruleNamed("reflected-xss", "Java", "Python"), content, trialURL)
	require.Len(t, refs, 2)

	assert.Contains(t, refs[0], "Watch a video on this topic")
	assert.Contains(t, refs[0], "https://media.securecodewarrior.com/v2/xss.mp4")

	assert.Contains(t, refs[1], "Complete a training exercise")
	assert.Contains(t, refs[1], "<b>Java</b>")
	assert.Contains(t, refs[1], "LanguageKey=Java&redirect=true")

	for _, ref := range refs {
		assert.NotContains(t, ref, "Python", "no exercise link for a language the content lacks")
	}
}

// Exercise links are gated on the rule's own languages, not just the
// catalog's. A rule scanned only by the .NET agent must not link Java
// training however rich the catalog entry is.
func TestBuild_RuleLanguageGate(t *testing.T) {
	content := contentWith(nil, "java", "python:django", "c#")

	refs := Build(ruleNamed("sql-injection", ".NET"), content, trialURL)
	require.Len(t, refs, 1)
	assert.Contains(t, refs[0], "<b>.NET</b>")
	for _, ref := range refs {
		assert.NotContains(t, ref, "<b>Java</b>")
		assert.NotContains(t, ref, "<b>Python</b>")
	}

	// No overlap between rule languages and content: nothing to link.
	refs = Build(ruleNamed("sql-injection", "Ruby"), content, trialURL)
	assert.Empty(t, refs)

	// A rule with no languages at all gets no exercise links either.
	refs = Build(ruleNamed("sql-injection"), content, trialURL)
	assert.Empty(t, refs)
}

// The exercise chrome goes on the first exercise line only; later languages
// get the bare link.
func TestBuild_MultipleLanguagesChromeOnce(t *testing.T) {
	content := contentWith(nil, "java", "nodejs", "ruby")

	refs := Build(ruleNamed("sql-injection", "Java", "Node", "Ruby"), content, trialURL)
	require.Len(t, refs, 3)

	assert.True(t, strings.HasPrefix(refs[0], "<br>Complete a training exercise"))
	assert.True(t, strings.HasPrefix(refs[1], "<b>Node</b>: "))
	assert.True(t, strings.HasPrefix(refs[2], "<b>Ruby</b>: "))
}

// Reserve video applies only when the lookup yielded no video.
func TestBuild_ReserveVideoFallback(t *testing.T) {
	content := contentWith(nil, "java")

	refs := Build(ruleNamed("reflected-xss", "Java"), content, trialURL)
	require.Len(t, refs, 2)
	assert.Contains(t, refs[0], "https://media.securecodewarrior.com/v2/Module_73_Reflected_Cross+Site+Scripting_v2.mp4")
}

func TestBuild_LiveVideoBeatsReserve(t *testing.T) {
	content := contentWith([]string{"https://media.securecodewarrior.com/v2/live.mp4"}, "java")

	refs := Build(ruleNamed("reflected-xss", "Java"), content, trialURL)
	require.NotEmpty(t, refs)
	assert.Contains(t, refs[0], "live.mp4")
	assert.NotContains(t, refs[0], "Module_73")
}

// Language-agnostic reading links ride along after the exercise links, minus
// URLs the platform already shows: the pinned exclusion list and the rule's
// own OWASP page.
func TestBuild_LanguageAgnosticLinks(t *testing.T) {
	content := contentWith(nil, "java")
	content.Links = append(content.Links,
		scw.Link{URL: "https://example.com/deep-dive"},
		scw.Link{URL: "https://cheatsheetseries.owasp.org/cheatsheets/SQL_Injection_Prevention_Cheat_Sheet.html"},
		scw.Link{URL: "https://owasp.org/www-community/attacks/xss/"},
	)

	rule := ruleNamed("reflected-xss", "Java")
	rule.OWASP = "https://owasp.org/www-community/attacks/xss/"

	refs := Build(rule, content, trialURL)
	require.Len(t, refs, 3) // reserve video + java exercise + one surviving link

	assert.Contains(t, refs[2], "https://example.com/deep-dive")
	for _, ref := range refs {
		assert.NotContains(t, ref, "SQL_Injection_Prevention_Cheat_Sheet", "excluded URL must not ride along")
		assert.NotContains(t, ref, "attacks/xss/", "the rule's own OWASP page must not ride along")
	}
}

// No content at all: a rule with a reserve still gets its video line, a rule
// without one gets nothing.
func TestBuild_NoContent(t *testing.T) {
	refs := Build(ruleNamed("stored-xss"), nil, "")
	require.Len(t, refs, 1)
	assert.Contains(t, refs[0], "Module_72_Stored_Cross+Site+Scripting_v2.mp4")

	refs = Build(ruleNamed("unknown-rule"), nil, "")
	assert.Empty(t, refs, "no video, no exercises, nothing to write")
}

// Two builds from identical inputs must be byte-identical; the write-back is
// an overwrite and churn would dirty every rule on every run.
func TestBuild_Deterministic(t *testing.T) {
	content := contentWith([]string{"https://media.example.com/v.mp4"}, "java", "python:django", "c#")
	rule := ruleNamed("reflected-xss", ".NET", "Java", "Python")

	first := Build(rule, content, trialURL)
	second := Build(rule, content, trialURL)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated builds differ (-first +second):\n%s", diff)
	}
	require.Len(t, first, 4)
	// Mapping-table order: .NET before Java before Python.
	assert.Contains(t, first[1], "<b>.NET</b>")
	assert.Contains(t, first[2], "<b>Java</b>")
	assert.Contains(t, first[3], "<b>Python</b>")
}

func TestLanguageKey(t *testing.T) {
	key, ok := LanguageKey(".NET Core")
	require.True(t, ok)
	assert.Equal(t, "c#(.net):mvc", key)

	_, ok = LanguageKey("Go")
	assert.False(t, ok, "Go is deliberately unmapped")
}

func TestTables(t *testing.T) {
	u, ok := VideoReserve("clickjacking-control-missing")
	require.True(t, ok)
	assert.Contains(t, u, "CLICKJACKING")

	k, ok := MappingReserve("redos")
	require.True(t, ok)
	assert.Equal(t, "DenialofService:RegularExpressionDoS", k)

	_, ok = Override("reflected-xss")
	assert.False(t, ok)

	assert.True(t, ExcludedReference("https://owasp.org/www-community/attacks/XPATH_Injection"))
	assert.False(t, ExcludedReference("https://example.com/deep-dive"))

	// Callers may not mutate the canonical table through the accessor.
	mappings := LanguageMappings()
	mappings[0].Platform = "mutated"
	fresh := LanguageMappings()
	assert.Equal(t, ".NET", fresh[0].Platform)
}
