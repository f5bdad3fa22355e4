// Package brand implements the Brand Validator: a rule engine over
// produced chart configurations and their underlying data that refuses
// to certify outputs violating brand, accessibility, or data-integrity
// rules (spec.md §4.5). Its report shape is lifted from the teacher's
// spec_verify tool: a flat list of dimensioned issues with severity,
// rolled up into a pass/warn/fail status.
package brand

import "strings"

// Palette is the closed 10-color KDS sequence. No chart may use any
// color outside this set.
var Palette = []string{
	"#00A7B5",
	"#00747A",
	"#2E2E38",
	"#6F6F7A",
	"#A4DDE1",
	"#D9D9DE",
	"#F3704D",
	"#F7C35E",
	"#7FB069",
	"#5B6C8F",
}

var paletteSet = func() map[string]bool {
	m := make(map[string]bool, len(Palette))
	for _, c := range Palette {
		m[strings.ToUpper(c)] = true
	}
	return m
}()

// InPalette reports whether hex (case-insensitive) is one of the ten
// approved KDS colors.
func InPalette(hex string) bool {
	return paletteSet[strings.ToUpper(strings.TrimSpace(hex))]
}
