// File: internal/reference/tables.go
package reference

// LanguageMapping pairs a platform language name with the corresponding SCW
// language key. The table is ordered; reference output follows it so repeated
// runs produce byte-identical content.
type LanguageMapping struct {
	Platform string
	Key      string
}

// languageMappings is the fixed platform-to-SCW language table. Go is
// intentionally absent: SCW has no agent-matching Go content yet.
var languageMappings = []LanguageMapping{
	{Platform: ".NET", Key: "c#"},
	{Platform: ".NET Core", Key: "c#(.net):mvc"},
	{Platform: "Java", Key: "java"},
	{Platform: "Node", Key: "nodejs"},
	{Platform: "Python", Key: "python:django"},
	{Platform: "Ruby", Key: "ruby"},
}

// LanguageMappings returns the table in its canonical order.
func LanguageMappings() []LanguageMapping {
	out := make([]LanguageMapping, len(languageMappings))
	copy(out, languageMappings)
	return out
}

// LanguageKey maps a platform language to its SCW key.
func LanguageKey(platformLang string) (string, bool) {
	for _, m := range languageMappings {
		if m.Platform == platformLang {
			return m.Key, true
		}
	}
	return "", false
}

// videoReserves maps rule names to fallback video URLs for rules whose CWE
// lookup yields no video. These are pinned media files and will go stale as
// SCW reshuffles its catalog; treat a miss here as a signal to refresh the
// table, not as an error.
var videoReserves = map[string]string{
	"escape-templates-off":                "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"clickjacking-control-missing":        "https://media.securecodewarrior.com/v2/Module_25_CLICKJACKING_v2.mp4",
	"event-validation-disabled":           "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"forms-auth-protection":               "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"forms-auth-redirect":                 "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"http-only-disabled":                  "https://media.securecodewarrior.com/v2/Module_74_WEAK_SESSION_TOKEN_GENERATION_v2.mp4",
	"httponly":                            "https://media.securecodewarrior.com/v2/Module_74_WEAK_SESSION_TOKEN_GENERATION_v2.mp4",
	"max-request-length":                  "https://media.securecodewarrior.com/v2/Module_54_DoS_Generic_v2.mp4",
	"rails-http-only-disabled":            "https://media.securecodewarrior.com/v2/Module_74_WEAK_SESSION_TOKEN_GENERATION_v2.mp4",
	"reflected-xss":                       "https://media.securecodewarrior.com/v2/Module_73_Reflected_Cross+Site+Scripting_v2.mp4",
	"request-validation-disabled":         "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"request-validation-control-disabled": "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"role-manager-protection":             "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"session-rewriting":                   "https://media.securecodewarrior.com/v2/module_136_exposed_session_tokens.mp4",
	"session-regenerate":                  "https://media.securecodewarrior.com/v2/Module_74_WEAK_SESSION_TOKEN_GENERATION_v2.mp4",
	"stored-xss":                          "https://media.securecodewarrior.com/v2/Module_72_Stored_Cross+Site+Scripting_v2.mp4",
	"version-header-enabled":              "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"verb-tampering":                      "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"viewstate-mac-disabled":              "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"wcf-detect-replays":                  "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"wcf-exception-details":               "https://media.securecodewarrior.com/v2/module_184_error_details.mp4",
	"wcf-metadata-enabled":                "https://media.securecodewarrior.com/v2/module_184_error_details.mp4",
	"x-powered-by-header":                 "https://media.securecodewarrior.com/v2/module_184_error_details.mp4",
	"xxssprotection-header-disabled":      "https://media.securecodewarrior.com/v2/Module_73_Reflected_Cross+Site+Scripting_v2.mp4",
}

// VideoReserve returns the fallback video URL for a rule, if one is pinned.
func VideoReserve(ruleName string) (string, bool) {
	u, ok := videoReserves[ruleName]
	return u, ok
}

// mappingReserves maps rule names to SCW "default" mapping keys for rules
// whose CWE is not in SCW's CWE mapping at all. The catalog still has
// relevant content for them under its own category keys.
var mappingReserves = map[string]string{
	"unvalidated-forward":                   "UnvalidatedRedirectsandForwards:UnvalidatedRedirectsandForwards",
	"session-regenerate":                    "ImproperSessionHandling:ImproperTimeoutOfSessionID",
	"hql-injection":                         "InjectionFlaws:SQLInjection",
	"insecure-jsp-access":                   "SecurityMisconfiguration:InformationExposure",
	"overly-permissive-cross-domain-policy": "SecurityMisconfiguration:DisabledSecurityFeatures",
	"clickjacking-control-missing":          "SecurityMisconfiguration:Clickjacking",
	"parameter-pollution":                   "BusinessLogic:InsufficientValidation",
	"reflection-injection":                  "InjectionFlaws:CodeInjection",
	"redos":                                 "DenialofService:RegularExpressionDoS",
	"viewstate-mac-disabled":                "SecurityMisconfiguration:DisabledSecurityFeatures",
	"csp-header-missing":                    "SecurityMisconfiguration:DisabledSecurityFeatures",
	"csp-header-insecure":                   "SecurityMisconfiguration:DisabledSecurityFeatures",
	"request-validation-disabled":           "SecurityMisconfiguration:DisabledSecurityFeatures",
	"request-validation-control-disabled":   "SecurityMisconfiguration:DisabledSecurityFeatures",
	"event-validation-disabled":             "SecurityMisconfiguration:DisabledSecurityFeatures",
	"xcontenttype-header-missing":           "SecurityMisconfiguration:DisabledSecurityFeatures",
	"session-rewriting":                     "SessionHandling:ExposedSessionTokens",
	"trace-enabled":                         "InformationExposure:ErrorDetails",
	"trace-enabled-aspx":                    "InformationExposure:ErrorDetails",
	"trust-boundary-violation":              "BusinessLogic:LogicalError",
	"plaintext-conn-strings":                "InsecureAuthentication:HardcodedAPIKeys",
	"unsafe-code-execution":                 "InjectionFlaws:CodeInjection",
	"verb-tampering":                        "SecurityMisconfiguration:DisabledSecurityFeatures",
	"wcf-metadata-enabled":                  "SecurityMisconfiguration:InformationExposure",
}

// MappingReserve returns the SCW default-mapping key pinned for a rule.
func MappingReserve(ruleName string) (string, bool) {
	k, ok := mappingReserves[ruleName]
	return k, ok
}

// overrides maps rule names to a preferred SCW default-mapping key that takes
// precedence over the rule's own CWE. Empty today; entries go here when SCW's
// CWE mapping points somewhere worse than a hand-picked category.
var overrides = map[string]string{}

// Override returns the hand-picked mapping key for a rule, if any.
func Override(ruleName string) (string, bool) {
	k, ok := overrides[ruleName]
	return k, ok
}

// refExclusions lists language-agnostic catalog URLs that the platform
// already surfaces on its own rule pages; re-adding them as references would
// duplicate what the operator sees.
var refExclusions = []string{
	"https://cheatsheetseries.owasp.org/cheatsheets/SQL_Injection_Prevention_Cheat_Sheet.html",
	"https://cheatsheetseries.owasp.org/cheatsheets/Unvalidated_Redirects_and_Forwards_Cheat_Sheet.html",
	"https://cheatsheetseries.owasp.org/cheatsheets/Cross-Site_Request_Forgery_Prevention_Cheat_Sheet.html",
	"https://cheatsheetseries.owasp.org/cheatsheets/Cryptographic_Storage_Cheat_Sheet.html",
	"https://owasp.org/www-community/attacks/Command_Injection",
	"https://cheatsheetseries.owasp.org/cheatsheets/Cross_Site_Scripting_Prevention_Cheat_Sheet.html",
	"https://owasp.org/www-community/attacks/Code_Injection",
	"https://owasp.org/www-project-top-ten/2017/A8_2017-Insecure_Deserialization",
	"https://cheatsheetseries.owasp.org/cheatsheets/XML_External_Entity_Prevention_Cheat_Sheet.html",
	"https://owasp.org/www-community/attacks/XPATH_Injection",
}

// ExcludedReference reports whether a language-agnostic URL is suppressed.
func ExcludedReference(url string) bool {
	for _, ex := range refExclusions {
		if ex == url {
			return true
		}
	}
	return false
}
