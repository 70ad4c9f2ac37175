package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cupcake005/sku-app/internal/domain"
)

const headerLine = `"Category","SKU","Item Name","Brand Name","Variant Name","Price"` + "\n"

func product(category, sku, name, brand, variant, price string) domain.Product {
	return domain.Product{
		Category:    category,
		SKU:         sku,
		ItemName:    name,
		BrandName:   brand,
		VariantName: variant,
		Price:       decimal.RequireFromString(price),
	}
}

// fieldsOf drops store-assigned fields so parsed and original products compare
func fieldsOf(products []domain.Product) [][]string {
	out := make([][]string, len(products))
	for i, p := range products {
		out[i] = []string{p.Category, p.SKU, p.ItemName, p.BrandName, p.VariantName, FormatPrice(p.Price)}
	}
	return out
}

func TestSerializeCatalog(t *testing.T) {
	t.Run("quotes every field and applies export defaults", func(t *testing.T) {
		products := []domain.Product{
			product("FOOD", "8991", "INDOMIE", "INDOFOOD", "GORENG", "3500"),
			product("", "", "TAHU", "", "", "0"),
		}

		expected := headerLine +
			`"FOOD","8991","INDOMIE","INDOFOOD","GORENG","3500"` + "\n" +
			`"","-","TAHU","-","","0"` + "\n"
		assert.Equal(t, expected, EncodeCatalog(products))
	})

	t.Run("empty list writes the header only", func(t *testing.T) {
		assert.Equal(t, headerLine, EncodeCatalog(nil))
	})

	t.Run("doubles embedded quotes and flattens line breaks", func(t *testing.T) {
		products := []domain.Product{
			product("A", "1", `KOPI "ABC"`, "-", "LINE\nBREAK", "1"),
		}

		expected := headerLine + `"A","1","KOPI ""ABC""","-","LINE BREAK","1"` + "\n"
		assert.Equal(t, expected, EncodeCatalog(products))
	})

	t.Run("keeps the given order", func(t *testing.T) {
		products := []domain.Product{
			product("A", "2", "SECOND", "-", "", "1"),
			product("A", "1", "FIRST", "-", "", "1"),
		}

		lines := strings.Split(strings.TrimSpace(EncodeCatalog(products)), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "SECOND")
		assert.Contains(t, lines[2], "FIRST")
	})
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestSerializeCatalog_WriteError(t *testing.T) {
	err := SerializeCatalog(failingWriter{}, []domain.Product{product("A", "1", "X", "-", "", "1")})
	assert.Error(t, err)
}

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		expected        [][]string
		expectedDropped int
	}{
		{
			name:     "header only",
			input:    headerLine,
			expected: [][]string{},
		},
		{
			name:     "empty input",
			input:    "",
			expected: [][]string{},
		},
		{
			name:     "unquoted fields with surrounding spaces",
			input:    "h\n FOOD , 1 , KOPI , - , SACHET , 1500 \n",
			expected: [][]string{{"FOOD", "1", "KOPI", "-", "SACHET", "1500"}},
		},
		{
			name:     "quoted comma stays inside the field",
			input:    "h\n\"SNACK, CHIPS\",2,KERIPIK,-,,5000\n",
			expected: [][]string{{"SNACK, CHIPS", "2", "KERIPIK", "-", "", "5000"}},
		},
		{
			name:     "doubled quotes are literal",
			input:    "h\n\"A\",\"1\",\"KOPI \"\"ABC\"\"\",\"-\",\"\",\"1\"\n",
			expected: [][]string{{"A", "1", `KOPI "ABC"`, "-", "", "1"}},
		},
		{
			name:     "blank lines are skipped",
			input:    "h\n\nA,1,X,-,,1\n   \nA,2,Y,-,,2\n",
			expected: [][]string{{"A", "1", "X", "-", "", "1"}, {"A", "2", "Y", "-", "", "2"}},
		},
		{
			name:     "crlf line endings",
			input:    "h\r\nA,1,X,-,,1\r\n",
			expected: [][]string{{"A", "1", "X", "-", "", "1"}},
		},
		{
			name:            "short lines are dropped",
			input:           "h\nA,1,X\nA,2,Y,-,,2\n",
			expected:        [][]string{{"A", "2", "Y", "-", "", "2"}},
			expectedDropped: 1,
		},
		{
			name:            "empty item name is dropped",
			input:           "h\nA,1,,-,,1\n",
			expected:        [][]string{},
			expectedDropped: 1,
		},
		{
			name:     "extra fields are ignored",
			input:    "h\nA,1,X,-,V,7,extra,more\n",
			expected: [][]string{{"A", "1", "X", "-", "V", "7"}},
		},
		{
			name:     "empty sku becomes the sentinel",
			input:    "h\nA,,X,-,,1\n",
			expected: [][]string{{"A", "-", "X", "-", "", "1"}},
		},
		{
			name:     "free-form price",
			input:    "h\nA,1,X,-,,Rp 12.500\nA,2,Y,-,,abc\n",
			expected: [][]string{{"A", "1", "X", "-", "", "12.5"}, {"A", "2", "Y", "-", "", "0"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCatalog(strings.NewReader(tt.input))
			require.NoError(t, err)

			assert.Equal(t, tt.expected, fieldsOf(result.Products))
			assert.Equal(t, tt.expectedDropped, result.Dropped)
		})
	}
}

func TestParseCatalog_HeaderIsNotInspected(t *testing.T) {
	result, err := ParseCatalog(strings.NewReader("A,1,FIRST,-,,1\nA,2,SECOND,-,,2\n"))
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	assert.Equal(t, "SECOND", result.Products[0].ItemName)
}

func TestCatalogRoundTrip(t *testing.T) {
	products := []domain.Product{
		product("FOOD", "8991", "INDOMIE", "INDOFOOD", "GORENG", "3500"),
		product("SNACK, CHIPS", "2", "KERIPIK", "-", "", "5000"),
		product("", "-", `KOPI "ABC"`, "-", "SACHET, 10G", "12.5"),
		product("A", "3", "ZERO", "-", "", "0"),
	}

	encoded := EncodeCatalog(products)

	result, err := ParseCatalog(strings.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Dropped)
	assert.Equal(t, fieldsOf(products), fieldsOf(result.Products))

	// serializing the parsed result gives the same text
	assert.Equal(t, encoded, EncodeCatalog(result.Products))
}

func TestSplitCatalogLine(t *testing.T) {
	tests := []struct {
		line     string
		expected []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{`"a,b",c`, []string{"a,b", "c"}},
		{`"a""b",c`, []string{`a"b`, "c"}},
		{"a,,c,", []string{"a", "", "c", ""}},
		{`  "x"  , y `, []string{"x", "y"}},
		{"", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitCatalogLine(tt.line))
		})
	}
}
