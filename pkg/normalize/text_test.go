package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/normalize"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Кафе Ромашка", "кафе-ромашка"},
		{"  White   Line  ", "white-line"},
		{"Bliss!!!", "bliss"},
		{"ул. Ленина, 1", "ул-ленина-1"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalize.Slugify(tc.in), "slugify(%q)", tc.in)
	}
}

func TestTransliterate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Ананас", "ananas"},
		{"Жёлтый", "jeltyy"},
		{"Щавель", "schavel"},
		{"Объём", "obem"},
		{"Bliss", "bliss"},
		{"White Line", "white_line"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalize.Transliterate(tc.in), "transliterate(%q)", tc.in)
	}
}

func TestDeriveSKUIsPure(t *testing.T) {
	t.Parallel()

	first := normalize.DeriveSKU("Bliss", "Ананас")
	second := normalize.DeriveSKU("Bliss", "Ананас")
	assert.Equal(t, "bliss_ananas", first)
	assert.Equal(t, first, second)

	assert.Equal(t, "bliss_grusha", normalize.DeriveSKU("Bliss", "Груша"))
	assert.Equal(t, "white_line_myata", normalize.DeriveSKU("White Line", "Мята"))
}

func TestParseFlexibleDate(t *testing.T) {
	t.Parallel()

	t.Run("dotted date", func(t *testing.T) {
		got, ok := normalize.ParseFlexibleDate("01.06.2024")
		require.True(t, ok)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, 6, int(got.Month()))
		assert.Equal(t, 1, got.Day())
	})

	t.Run("dotted date with time", func(t *testing.T) {
		got, ok := normalize.ParseFlexibleDate("15.03.2024 09:30:00")
		require.True(t, ok)
		assert.Equal(t, 15, got.Day())
		assert.Equal(t, 9, got.Hour())
		assert.Equal(t, 30, got.Minute())
	})

	t.Run("dotted date with minutes only", func(t *testing.T) {
		got, ok := normalize.ParseFlexibleDate("15.03.2024 09:30")
		require.True(t, ok)
		assert.Equal(t, 9, got.Hour())
		assert.Equal(t, 30, got.Minute())
	})

	t.Run("iso fallback", func(t *testing.T) {
		got, ok := normalize.ParseFlexibleDate("2024-06-01T12:00:00Z")
		require.True(t, ok)
		assert.Equal(t, 6, int(got.Month()))
	})

	t.Run("garbage returns not-ok", func(t *testing.T) {
		for _, v := range []string{"", "   ", "вчера", "32.13.2024", "not-a-date", "01.06.2024 вечером"} {
			_, ok := normalize.ParseFlexibleDate(v)
			assert.False(t, ok, "input %q", v)
		}
	})
}

func TestSplitFlavors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Ананас", "Груша"}, normalize.SplitFlavors("Ананас, Груша", ","))
	assert.Equal(t, []string{"A", "B", "C"}, normalize.SplitFlavors("A;B , C", ",;"))
	assert.Nil(t, normalize.SplitFlavors("  ", ","))
	assert.Nil(t, normalize.SplitFlavors(",,,", ","))
}

func TestRepairSwappedNameAddress(t *testing.T) {
	t.Parallel()

	longAddr := "г. Ташкент, ул. Амира Темура, дом 107Б, ориентир ЦУМ"
	name, addr := normalize.RepairSwappedNameAddress(longAddr, "Кафе Ромашка", 40)
	assert.Equal(t, "Кафе Ромашка", name)
	assert.Equal(t, longAddr, addr)

	// Short names stay put even with commas.
	name, addr = normalize.RepairSwappedNameAddress("Кафе, бар", "ул. Ленина 1", 40)
	assert.Equal(t, "Кафе, бар", name)
	assert.Equal(t, "ул. Ленина 1", addr)

	// Long name without comma is treated as a legitimate name.
	longName := "Очень длинное название заведения без единой запятой вовсе"
	name, addr = normalize.RepairSwappedNameAddress(longName, "адрес", 40)
	assert.Equal(t, longName, name)
	assert.Equal(t, "адрес", addr)
}
