// Package sanitize masks secrets in text before it is drawn on screen.
// Matching is best effort; the selected entry itself is never altered.
package sanitize

import "regexp"

// Mask replaces a secret value.
const Mask = "********"

// Pattern is a compiled secret detector. Replacement may refer to the
// regex groups.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// token matches a secret with a recognizable shape and masks all of it.
func token(name, expr string) Pattern {
	return Pattern{Name: name, Regex: regexp.MustCompile(expr), Replacement: Mask}
}

// prefixed keeps group 1 and masks the rest of the match.
func prefixed(name, expr string) Pattern {
	return Pattern{Name: name, Regex: regexp.MustCompile(expr), Replacement: "${1}" + Mask}
}

var defaultPatterns = []Pattern{
	token("aws-access-key", `AKIA[0-9A-Z]{16}`),
	token("github-token", `gh[pousr]_[A-Za-z0-9]{36}`),
	token("slack-token", `xox[baprs]-[0-9a-zA-Z-]+`),
	token("jwt", `eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
	token("pem-block", `-----BEGIN [A-Z ]+-----[\s\S]+?-----END [A-Z ]+-----`),
	prefixed("assignment", `(?i)(\b\w*(?:password|passwd|token|secret|api_?key|private_?key)\w*\s*[=:]\s*)\S+`),
	prefixed("bearer", `(?i)(\bbearer\s+)[A-Za-z0-9._~+/-]{20,}=*`),
	prefixed("basic-auth", `(?i)(\bbasic\s+)[A-Za-z0-9+/=]{20,}`),
	{
		Name:        "url-credentials",
		Regex:       regexp.MustCompile(`(://[^/\s:@]+:)[^/\s@]+@`),
		Replacement: "${1}" + Mask + "@",
	},
}

// secretName matches variable names whose whole value is a secret.
var secretName = regexp.MustCompile(`(?i)(password|passwd|token|secret|api_?key|private_?key|credential)`)

// Patterns returns a copy of the default patterns.
func Patterns() []Pattern {
	out := make([]Pattern, len(defaultPatterns))
	copy(out, defaultPatterns)
	return out
}

// Sanitizer masks the matches of a set of patterns.
type Sanitizer struct {
	patterns []Pattern
}

// New creates a Sanitizer. With no patterns it uses the defaults.
func New(patterns ...Pattern) *Sanitizer {
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}
	return &Sanitizer{patterns: patterns}
}

// Sanitize returns s with every detected secret masked.
func (s *Sanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}
	for _, p := range s.patterns {
		text = p.Regex.ReplaceAllString(text, p.Replacement)
	}
	return text
}

var defaultSanitizer = New()

// Sanitize masks secrets in text with the default patterns.
func Sanitize(text string) string {
	return defaultSanitizer.Sanitize(text)
}

// IsSecretName reports whether a variable called name likely holds a
// secret, such as GITHUB_TOKEN or DB_PASSWORD.
func IsSecretName(name string) bool {
	return secretName.MatchString(name)
}

// Value masks value when name marks it as secret and sanitizes it
// otherwise.
func Value(name, value string) string {
	if value != "" && IsSecretName(name) {
		return Mask
	}
	return Sanitize(value)
}
