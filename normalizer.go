package main

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// sentinelToken stands in for a name that normalizes to nothing, so token
// sets are never empty downstream.
const sentinelToken = "__empty__"

// ProductNormalizer turns raw listing names into comparable token sets and
// extracts quantities. It is stateless after construction and safe for
// concurrent use.
type ProductNormalizer struct {
	unitMap      map[string]string
	synonymMap   map[string]string
	stopwords    map[string]bool
	promoRegexes []*regexp.Regexp

	htmlTagRegex     *regexp.Regexp
	nonWordRegex     *regexp.Regexp
	digitLetterRegex *regexp.Regexp
	letterDigitRegex *regexp.Regexp
	whitespaceRegex  *regexp.Regexp

	multipackRegex *regexp.Regexp
	decimalRegex   *regexp.Regexp
	piecesRegex    *regexp.Regexp

	diacriticFold transform.Transformer
}

// NewProductNormalizer creates a normalizer with the static Bulgarian
// grocery tables compiled in.
func NewProductNormalizer() *ProductNormalizer {
	n := &ProductNormalizer{
		unitMap:    BuildUnitMap(),
		synonymMap: BuildProductSynonymMap(),
		stopwords:  BuildStopwords(),

		htmlTagRegex:     regexp.MustCompile(`<[^>]+>|&[a-z]+;`),
		nonWordRegex:     regexp.MustCompile(`[^\p{L}\p{N}]+`),
		digitLetterRegex: regexp.MustCompile(`(\d)(\p{L})`),
		letterDigitRegex: regexp.MustCompile(`(\p{L})(\d)`),
		whitespaceRegex:  regexp.MustCompile(`\s+`),

		// "6х330мл", "2 x 500 ml" - both Latin x and Cyrillic х appear.
		// \b is ASCII-only in RE2 and never matches after a Cyrillic
		// letter, so the unit is delimited by an explicit non-letter.
		multipackRegex: regexp.MustCompile(`(\d+)\s*[xх×]\s*(\d+(?:[.,]\d+)?)\s*(мл|ml|кг|kg|гр|г|g|л|l)(?:[^\p{L}]|$)`),
		decimalRegex:   regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(мл|ml|кг|kg|гр|г|g|л|l)(?:[^\p{L}]|$)`),
		piecesRegex:    regexp.MustCompile(`(\d+)\s*(броя|бр|pcs|pc)\.?(?:[^\p{L}]|$)`),

		diacriticFold: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}

	for _, pattern := range BuildPromoPrefixPatterns() {
		n.promoRegexes = append(n.promoRegexes, regexp.MustCompile(`(?i)`+pattern))
	}

	return n
}

// CleanName lowercases a listing name and strips HTML remnants and
// promotional boilerplate. The result still contains unit suffixes.
func (n *ProductNormalizer) CleanName(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = n.htmlTagRegex.ReplaceAllString(cleaned, " ")
	for _, re := range n.promoRegexes {
		cleaned = re.ReplaceAllString(cleaned, " ")
	}
	cleaned = n.whitespaceRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// NormalizeName produces the flat comparison string used for character
// n-gram similarity: cleaned, diacritic-folded, single-spaced.
func (n *ProductNormalizer) NormalizeName(name string) string {
	cleaned := n.CleanName(name)
	cleaned = n.nonWordRegex.ReplaceAllString(cleaned, " ")
	cleaned = n.whitespaceRegex.ReplaceAllString(cleaned, " ")
	return n.foldDiacritics(strings.TrimSpace(cleaned))
}

// Tokenize converts a listing name into an ordered, de-duplicated token
// slice. Numeric-unit runs like "400г" split into "400" and a canonical
// unit token. An empty result yields the sentinel token, never a nil slice.
func (n *ProductNormalizer) Tokenize(name string) []string {
	cleaned := n.CleanName(name)
	cleaned = n.digitLetterRegex.ReplaceAllString(cleaned, "$1 $2")
	cleaned = n.letterDigitRegex.ReplaceAllString(cleaned, "$1 $2")
	cleaned = n.nonWordRegex.ReplaceAllString(cleaned, " ")

	var tokens []string
	seen := make(map[string]bool)
	for _, raw := range strings.Fields(cleaned) {
		tok := n.canonicalToken(raw)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}

	filtered := tokens[:0:0]
	for _, tok := range tokens {
		if !n.stopwords[tok] {
			filtered = append(filtered, tok)
		}
	}
	// Stopword removal must never empty a name.
	if len(filtered) > 0 {
		tokens = filtered
	}

	if len(tokens) == 0 {
		return []string{sentinelToken}
	}
	return tokens
}

// canonicalToken maps a raw token to its comparable form, or "" to drop it.
func (n *ProductNormalizer) canonicalToken(raw string) string {
	if isNumeric(raw) {
		return raw
	}
	if unit, ok := n.unitMap[raw]; ok {
		return unit
	}
	tok := n.foldDiacritics(raw)
	if syn, ok := n.synonymMap[tok]; ok {
		return syn
	}
	if len([]rune(tok)) < 2 {
		return ""
	}
	return tok
}

// foldDiacritics strips combining marks from Latin-script tokens. Cyrillic
// text passes through untouched, since NFD would otherwise decompose й and ѝ.
func (n *ProductNormalizer) foldDiacritics(s string) string {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return s
		}
	}
	folded, _, err := transform.String(n.diacriticFold, s)
	if err != nil {
		return s
	}
	return folded
}

// ParseQuantity extracts a quantity from free text and converts it to base
// units: liters become milliliters, kilograms become grams. Multipacks like
// "6х330мл" multiply out. Returns ok=false when no quantity is present.
func (n *ProductNormalizer) ParseQuantity(text string) (float64, string, bool) {
	if text == "" {
		return 0, "", false
	}
	lowered := strings.ToLower(n.htmlTagRegex.ReplaceAllString(text, " "))

	if m := n.multipackRegex.FindStringSubmatch(lowered); m != nil {
		count, _ := strconv.Atoi(m[1])
		value := parseDecimal(m[2])
		qty, unit := toBaseUnit(float64(count)*value, n.unitMap[m[3]])
		return qty, unit, true
	}
	if m := n.decimalRegex.FindStringSubmatch(lowered); m != nil {
		qty, unit := toBaseUnit(parseDecimal(m[1]), n.unitMap[m[2]])
		return qty, unit, true
	}
	if m := n.piecesRegex.FindStringSubmatch(lowered); m != nil {
		value := parseDecimal(m[1])
		return value, "pcs", true
	}
	return 0, "", false
}

func toBaseUnit(value float64, unit string) (float64, string) {
	switch unit {
	case "l":
		return value * 1000, "ml"
	case "kg":
		return value * 1000, "g"
	default:
		return value, unit
	}
}

func parseDecimal(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
