// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"regexp"
	"strings"
)

// The corpus is mixed Turkish and English, so both stopword sets apply.
var stopwords = map[string]struct{}{
	// Turkish
	"bir": {}, "bu": {}, "ve": {}, "ile": {}, "için": {}, "olan": {},
	"olarak": {}, "de": {}, "da": {}, "ki": {}, "mi": {}, "mu": {},
	"mı": {}, "mü": {}, "ne": {}, "ya": {}, "yada": {}, "veya": {},
	"ama": {}, "çok": {}, "daha": {}, "en": {}, "şu": {}, "o": {},
	"ben": {}, "sen": {}, "biz": {}, "siz": {}, "onlar": {}, "her": {},
	"hiç": {}, "bazı": {}, "tüm": {}, "bütün": {}, "kendi": {},
	"gibi": {}, "kadar": {}, "sonra": {},
	// English
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
}

var (
	urlPattern     = regexp.MustCompile(`http[s]?://[^\s]+`)
	mentionPattern = regexp.MustCompile(`[@#]\w+`)
	// Letter tokens only, ASCII plus the Turkish extras, two runes minimum.
	tokenPattern = regexp.MustCompile(`[a-zçğıöşü]{2,}`)
)

// cleanText lowercases the input and strips URLs, @mentions and
// #hashtags. Token extraction happens in tokenize; this only removes the
// noise patterns that would otherwise leak fragments into tokens.
func cleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	return text
}

// tokenize cleans the text, extracts letter tokens of at least two runes,
// drops stopwords and appends bigrams over the surviving token sequence.
// The unigrams come first, then the bigrams, which is irrelevant to the
// bag-of-words weighting but keeps output stable for tests.
func tokenize(text string) []string {
	unigrams := tokenPattern.FindAllString(cleanText(text), -1)

	kept := unigrams[:0]
	for _, tok := range unigrams {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		kept = append(kept, tok)
	}

	out := make([]string, 0, len(kept)*2)
	out = append(out, kept...)
	for i := 0; i+1 < len(kept); i++ {
		out = append(out, kept[i]+" "+kept[i+1])
	}
	return out
}

// contentDocument builds a post's analysis document from its title and
// body. The title is repeated three times so title terms dominate the
// term frequencies.
func contentDocument(title, content string) []string {
	return tokenize(title + " " + title + " " + title + " " + content)
}
