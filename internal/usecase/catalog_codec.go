package usecase

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Cupcake005/sku-app/internal/domain"
)

// CatalogHeader is the literal header row of catalog import/export files
var CatalogHeader = []string{"Category", "SKU", "Item Name", "Brand Name", "Variant Name", "Price"}

// catalogColumns is the number of fields a data row must yield
const catalogColumns = 6

// maxLineSize bounds a single CSV line read by ParseCatalog
const maxLineSize = 1 << 20

// column positions within a row
const (
	colCategory = iota
	colSKU
	colItemName
	colBrandName
	colVariantName
	colPrice
)

// ParseResult holds the products read from a catalog file and how many
// data lines were dropped (too few fields or an empty item name).
type ParseResult struct {
	Products []domain.Product
	Dropped  int
}

// SerializeCatalog writes products as the six-column catalog format.
// Every field is quoted; embedded quotes are doubled. Records are
// written in the order given.
func SerializeCatalog(w io.Writer, products []domain.Product) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(joinQuoted(CatalogHeader)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range products {
		if _, err := bw.WriteString(joinQuoted(catalogRow(&products[i]))); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	return bw.Flush()
}

// EncodeCatalog is SerializeCatalog into a string
func EncodeCatalog(products []domain.Product) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = SerializeCatalog(&sb, products)
	return sb.String()
}

// catalogRow applies the export defaults to one product
func catalogRow(p *domain.Product) []string {
	sku := p.SKU
	if sku == "" {
		sku = domain.SentinelSKU
	}
	brand := p.BrandName
	if brand == "" {
		brand = domain.DefaultBrand
	}

	return []string{
		p.Category,
		sku,
		p.ItemName,
		brand,
		p.VariantName,
		FormatPrice(p.Price),
	}
}

var fieldEscaper = strings.NewReplacer(`"`, `""`, "\r\n", " ", "\r", " ", "\n", " ")

func joinQuoted(fields []string) string {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(fieldEscaper.Replace(f))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
	return sb.String()
}

// ParseCatalog reads a catalog file. The first line is the header and is
// skipped without inspection. Blank lines are ignored; lines yielding
// fewer than six fields or an empty item name are dropped and counted.
// The only error is a failure to read r.
func ParseCatalog(r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	result := &ParseResult{}
	header := true

	for scanner.Scan() {
		line := scanner.Text()
		if header {
			header = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		product, ok := parseCatalogLine(line)
		if !ok {
			result.Dropped++
			continue
		}
		result.Products = append(result.Products, product)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return result, nil
}

func parseCatalogLine(line string) (domain.Product, bool) {
	fields := SplitCatalogLine(line)
	if len(fields) < catalogColumns {
		return domain.Product{}, false
	}

	p := domain.Product{
		Category:    fields[colCategory],
		SKU:         fields[colSKU],
		ItemName:    fields[colItemName],
		BrandName:   fields[colBrandName],
		VariantName: fields[colVariantName],
		Price:       ParsePrice(fields[colPrice]),
	}
	if p.SKU == "" {
		p.SKU = domain.SentinelSKU
	}
	if p.ItemName == "" {
		return domain.Product{}, false
	}

	return p, true
}

// SplitCatalogLine tokenizes one line. A double quote toggles the quoted
// state and a comma separates fields only outside quotes. Inside a quoted
// field a doubled quote is a literal quote. Each field is trimmed of
// surrounding whitespace.
func SplitCatalogLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
		escaped  bool
	)

	flush := func() {
		fields = append(fields, cleanField(current.String(), escaped))
		current.Reset()
		escaped = false
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			current.WriteByte('"')
			escaped = true
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			flush()
		default:
			current.WriteByte(c)
		}
	}
	flush()

	return fields
}

// cleanField trims whitespace and strips stray quotes left at either end.
// Quotes that came from a doubled-quote escape are content and are kept.
func cleanField(raw string, escaped bool) string {
	s := strings.TrimSpace(raw)
	if !escaped {
		s = strings.Trim(s, `"`)
	}
	return s
}
