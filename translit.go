package main

import (
	"strings"
	"unicode"
)

// TransliterationExpander augments a token with script-equivalent and alias
// variants so that верея and vereia can align during scoring. Expansion is
// bounded and deterministic: the same token always yields the same variant
// slice, in the same order.
type TransliterationExpander struct {
	translit    map[rune]string
	brandAlias  map[string]string
	synonyms    map[string]string
	maxVariants int
}

func NewTransliterationExpander(maxVariants int) *TransliterationExpander {
	return &TransliterationExpander{
		translit:    BuildCyrillicTranslitMap(),
		brandAlias:  BuildBrandAliasMap(),
		synonyms:    BuildProductSynonymMap(),
		maxVariants: maxVariants,
	}
}

// Expand returns the token plus up to maxVariants-1 equivalents: the Latin
// transliteration for Cyrillic tokens, the canonical brand alias, and the
// canonical product-type synonym. The original token is always first.
func (e *TransliterationExpander) Expand(token string) []string {
	variants := []string{token}

	if lat := e.Transliterate(token); lat != token && lat != "" {
		variants = appendVariant(variants, lat, e.maxVariants)
	}
	if alias, ok := e.brandAlias[token]; ok {
		variants = appendVariant(variants, alias, e.maxVariants)
	}
	if syn, ok := e.synonyms[token]; ok {
		variants = appendVariant(variants, syn, e.maxVariants)
	}
	return variants
}

// ExpandAll expands every token of a set into one flat de-duplicated set.
func (e *TransliterationExpander) ExpandAll(tokens []string) []string {
	out := make([]string, 0, len(tokens)*2)
	seen := make(map[string]bool, len(tokens)*2)
	for _, tok := range tokens {
		for _, v := range e.Expand(tok) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Transliterate converts Cyrillic letters to their Latin spelling. Tokens
// with no Cyrillic letters come back unchanged.
func (e *TransliterationExpander) Transliterate(token string) string {
	hasCyrillic := false
	for _, r := range token {
		if unicode.Is(unicode.Cyrillic, r) {
			hasCyrillic = true
			break
		}
	}
	if !hasCyrillic {
		return token
	}

	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if lat, ok := e.translit[r]; ok {
			b.WriteString(lat)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func appendVariant(variants []string, v string, max int) []string {
	if len(variants) >= max {
		return variants
	}
	for _, existing := range variants {
		if existing == v {
			return variants
		}
	}
	return append(variants, v)
}
