package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	n := NewProductNormalizer()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "english name with percentage",
			in:   "Fresh Milk 3%",
			want: []string{"fresh", "milk", "3"},
		},
		{
			name: "bulgarian name maps to canonical synonyms",
			in:   "Верея прясно мляко 3%",
			want: []string{"верея", "fresh", "milk", "3"},
		},
		{
			name: "numeric unit run splits and canonicalizes",
			in:   "Сирене 400г",
			want: []string{"cheese", "400", "g"},
		},
		{
			name: "unit spellings collapse",
			in:   "Олио 1 л",
			want: []string{"oil", "1", "l"},
		},
		{
			name: "stopwords removed",
			in:   "Мляко с какао",
			want: []string{"milk", "какао"},
		},
		{
			name: "promo prefix stripped",
			in:   "Само с Billa Card - Кola 2л",
			want: []string{"кola", "2", "l"},
		},
		{
			name: "hyphens and slashes split",
			in:   "кока-кола зеро/лайт",
			want: []string{"кока", "кола", "зеро", "лайт"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Tokenize(tt.in))
		})
	}
}

func TestTokenizeNeverReturnsEmpty(t *testing.T) {
	n := NewProductNormalizer()

	for _, in := range []string{"", "   ", "©", "и с за"} {
		tokens := n.Tokenize(in)
		require.NotEmpty(t, tokens, "input %q", in)
	}

	// A name that is all stopwords keeps its tokens instead of vanishing.
	assert.Equal(t, []string{"за", "от"}, n.Tokenize("за от"))
	// A truly empty name becomes the sentinel.
	assert.Equal(t, []string{sentinelToken}, n.Tokenize("  "))
}

func TestTokenizeIsDeterministic(t *testing.T) {
	n := NewProductNormalizer()
	name := "King оферта - Верея Прясно Мляко 3% 1л"
	first := n.Tokenize(name)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, n.Tokenize(name))
	}
}

func TestParseQuantity(t *testing.T) {
	n := NewProductNormalizer()

	tests := []struct {
		in       string
		wantVal  float64
		wantUnit string
		wantOK   bool
	}{
		{"Coca-Cola 2 x 500 мл", 1000, "ml", true},
		{"Прясно мляко 1.5 л", 1500, "ml", true},
		{"Сирене 400 г", 400, "g", true},
		{"Масло 250г", 250, "g", true},
		{"Бира 6х330ml", 1980, "ml", true},
		{"Яйца 10 бр", 10, "pcs", true},
		{"Олио 1л", 1000, "ml", true},
		{"Захар 2 кг", 2000, "g", true},
		{"Вода 0,5 л", 500, "ml", true},
		{"Продукт без количество", 0, "", false},
		{"", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			val, unit, ok := n.ParseQuantity(tt.in)
			require.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantVal, val, 1e-9)
			assert.Equal(t, tt.wantUnit, unit)
		})
	}
}

func TestNormalizeNameFoldsLatinDiacriticsOnly(t *testing.T) {
	n := NewProductNormalizer()

	assert.Equal(t, "nestle cafe", n.NormalizeName("Nestlé Café"))
	// Cyrillic stays intact: NFD would decompose й into и + breve.
	assert.Equal(t, "йогурт", n.NormalizeName("Йогурт"))
}
