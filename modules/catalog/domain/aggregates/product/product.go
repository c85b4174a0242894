package product

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/normalize"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrSKUTaken = errors.New("sku already exists")
)

// Line is the closed set of product lines. Unrecognized labels map to
// LineUnknown rather than failing.
type Line string

const (
	LineBliss   Line = "Bliss"
	LineWhite   Line = "White Line"
	LineBlack   Line = "Black Line"
	LineCigar   Line = "Cigar Line"
	LineUnknown Line = "Unknown"
)

var knownLines = map[string]Line{
	"bliss":      LineBliss,
	"white line": LineWhite,
	"black line": LineBlack,
	"cigar line": LineCigar,
}

// ParseLine maps a raw column label to a line, case-insensitively.
func ParseLine(label string) Line {
	key := strings.ToLower(strings.Join(strings.Fields(label), " "))
	if line, ok := knownLines[key]; ok {
		return line
	}
	return LineUnknown
}

type Category string

const (
	CategoryLineMarker Category = "LINE_MARKER"
	CategoryFlavor     Category = "FLAVOR"
	CategoryTobacco    Category = "TOBACCO"
)

type Product struct {
	id        uuid.UUID
	sku       string
	line      Line
	flavor    string
	category  Category
	price     decimal.NullDecimal
	createdAt time.Time
	updatedAt time.Time
}

// New derives the SKU from the line and flavor. The flavor is stored as
// typed, trimmed only.
func New(line Line, flavor string, category Category) Product {
	flavor = strings.TrimSpace(flavor)
	return Product{
		sku:      normalize.DeriveSKU(string(line), flavor),
		line:     line,
		flavor:   flavor,
		category: category,
	}
}

func Hydrate(
	id uuid.UUID,
	sku string,
	line Line,
	flavor string,
	category Category,
	price decimal.NullDecimal,
	createdAt time.Time,
	updatedAt time.Time,
) Product {
	return Product{
		id:        id,
		sku:       sku,
		line:      line,
		flavor:    flavor,
		category:  category,
		price:     price,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (p Product) ID() uuid.UUID              { return p.id }
func (p Product) SKU() string                { return p.sku }
func (p Product) Line() Line                 { return p.line }
func (p Product) Flavor() string             { return p.flavor }
func (p Product) Category() Category         { return p.category }
func (p Product) Price() decimal.NullDecimal { return p.price }
func (p Product) CreatedAt() time.Time       { return p.createdAt }
func (p Product) UpdatedAt() time.Time       { return p.updatedAt }
func (p Product) IsZero() bool               { return p.id == uuid.Nil && p.sku == "" }

func (p Product) WithPrice(price decimal.Decimal) Product {
	p.price = decimal.NewNullDecimal(price)
	return p
}
