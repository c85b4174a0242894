package product_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/domain/aggregates/product"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		label string
		want  product.Line
	}{
		{"Bliss", product.LineBliss},
		{"bliss", product.LineBliss},
		{"  White   Line ", product.LineWhite},
		{"BLACK LINE", product.LineBlack},
		{"Cigar Line", product.LineCigar},
		{"Premium", product.LineUnknown},
		{"", product.LineUnknown},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, product.ParseLine(tc.label), "label %q", tc.label)
	}
}

func TestNewDerivesSKU(t *testing.T) {
	p := product.New(product.LineBliss, "Ананас", product.CategoryFlavor)
	require.Equal(t, "bliss_ananas", p.SKU())
	require.Equal(t, "Ананас", p.Flavor())
}
