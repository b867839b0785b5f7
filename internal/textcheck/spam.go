package textcheck

import (
	"regexp"
	"strings"
)

// knownTLDs bounds the bare-domain check so ordinary "word.word" typos
// don't trip it.
var knownTLDs = []string{
	"com", "net", "org", "io", "co", "app", "dev", "xyz", "info", "biz",
	"site", "online", "shop", "store", "top", "club", "link", "click",
	"gg", "me", "tv", "cc", "ai", "us", "uk", "de", "ru", "cn",
}

var (
	schemeRegex = regexp.MustCompile(`(?i)(https?://|www\.)`)
	domainRegex = regexp.MustCompile(`(?i)(^|[\s(])[a-z0-9][a-z0-9-]*\.(` + strings.Join(knownTLDs, "|") + `)([\s).,!?:;]|/|$)`)
)

// HasLink reports whether s contains an explicit URL, a www-prefixed
// host, or a bare domain-shaped token with a known TLD. Any hit rejects
// the submission; there is no allowlist for links.
func HasLink(s string) bool {
	if s == "" {
		return false
	}
	if schemeRegex.MatchString(s) {
		return true
	}
	return domainRegex.MatchString(s)
}
