package textcheck

import (
	"time"

	goaway "github.com/TwiN/go-away"
	"github.com/cloudflare/ahocorasick"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hbollon/go-edlib"
)

const (
	fuzzyMinLen = 4
	fuzzyMaxLen = 12

	verdictCacheSize = 4096
	verdictCacheTTL  = 10 * time.Minute
)

// ProfanityDetector flags intentionally obfuscated profanity. The base
// word list is delegated to go-away; the normalization pipeline and the
// candidate windows in normalize.go defeat leet-speak, spacing and
// repeated-character evasion; the phonetic set and the edit-distance pass
// catch near-miss spellings the fixed leet map cannot produce.
type ProfanityDetector struct {
	base      *goaway.ProfanityDetector
	phonetic  map[string]struct{}
	substr    *ahocorasick.Matcher
	safe      *ahocorasick.Matcher
	threshold float64
	verdicts  *lru.LRU[string, bool]
}

// NewProfanityDetector builds a detector with the given similarity
// threshold for the fuzzy pass (the shipped policy uses 0.78).
func NewProfanityDetector(threshold float64) *ProfanityDetector {
	phonetic := make(map[string]struct{}, len(phoneticMisses))
	for _, w := range phoneticMisses {
		phonetic[w] = struct{}{}
	}

	return &ProfanityDetector{
		// Candidates are already normalized here, so the library's own
		// sanitizers would only double-fold; leave just accent folding on.
		base: goaway.NewProfanityDetector().
			WithSanitizeLeetSpeak(false).
			WithSanitizeSpecialCharacters(false).
			WithSanitizeAccents(true),
		phonetic:  phonetic,
		substr:    ahocorasick.NewStringMatcher(substrWords),
		safe:      ahocorasick.NewStringMatcher(safeWords),
		threshold: threshold,
		verdicts:  lru.NewLRU[string, bool](verdictCacheSize, nil, verdictCacheTTL),
	}
}

// IsProfane reports whether any candidate form of s matches the block
// lists. Verdicts are memoized per input string.
func (d *ProfanityDetector) IsProfane(s string) bool {
	if s == "" {
		return false
	}
	if v, ok := d.verdicts.Get(s); ok {
		return v
	}

	flagged := false
	for c := range candidates(s) {
		// A candidate containing a safe word is exempt wholesale, so
		// "toscunthorpe"-style token windows do not flag the substring
		// inside a legitimate word.
		if len(d.safe.Match([]byte(c))) > 0 {
			continue
		}
		if d.matches(c) {
			flagged = true
			break
		}
	}

	d.verdicts.Add(s, flagged)
	return flagged
}

func (d *ProfanityDetector) matches(c string) bool {
	if d.base.IsProfane(c) {
		return true
	}
	if _, ok := d.phonetic[c]; ok {
		return true
	}
	if n := len(c); n >= fuzzyMinLen && n <= fuzzyMaxLen {
		for w := range d.phonetic {
			sim, err := edlib.StringsSimilarity(c, w, edlib.DamerauLevenshtein)
			if err == nil && float64(sim) >= d.threshold {
				return true
			}
		}
	}
	if len(c) >= fuzzyMinLen && len(d.substr.Match([]byte(c))) > 0 {
		return true
	}
	return false
}
