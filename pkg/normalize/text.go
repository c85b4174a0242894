// Package normalize holds the pure text and date normalization used by the
// import pipeline. Nothing here performs I/O or reads stored state.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// translitTable is the fixed Cyrillic-to-Latin mapping used for SKU
// derivation. The table is part of the SKU contract: changing an entry
// changes every derived SKU.
var translitTable = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "e", 'ж': "j", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

// Slugify lowercases text, drops everything outside Latin/Cyrillic letters,
// digits, whitespace and hyphens, then collapses whitespace runs into single
// hyphens. Deterministic and locale-stable.
func Slugify(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r >= 'а' && r <= 'я', r == 'ё':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	return strings.Trim(strings.Join(fields, "-"), "-")
}

// Transliterate maps Cyrillic letters to Latin per translitTable, lowercases,
// and replaces anything left outside [a-z0-9] with an underscore.
func Transliterate(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if mapped, ok := translitTable[r]; ok {
			b.WriteString(mapped)
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// DeriveSKU builds the stable product identity from a line and flavor pair.
// Same inputs always yield the same SKU.
func DeriveSKU(line, flavor string) string {
	return Transliterate(line) + "_" + Transliterate(flavor)
}

// SplitFlavors splits a cell on any of the separator runes, trims each part
// and drops empties.
func SplitFlavors(cell string, separators string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	if separators == "" {
		separators = ","
	}
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DefaultSwapThreshold is the name length above which RepairSwappedNameAddress
// starts suspecting a swapped pair.
const DefaultSwapThreshold = 40

// RepairSwappedNameAddress guesses whether a source row put the address in the
// name column and vice versa: a long, comma-bearing "name" that is longer than
// the "address" is treated as swapped. Best-effort repair, not a guarantee.
func RepairSwappedNameAddress(name, address string, threshold int) (string, string) {
	if threshold <= 0 {
		threshold = DefaultSwapThreshold
	}
	nameLen := utf8.RuneCountInString(name)
	if nameLen > threshold && strings.Contains(name, ",") && nameLen > utf8.RuneCountInString(address) {
		return address, name
	}
	return name, address
}
