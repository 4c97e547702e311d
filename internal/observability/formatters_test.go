package observability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintConversion(t *testing.T) {
	var sb strings.Builder
	printer := NewPrinter(&sb)

	printer.PrintConversion(&ConversionSummary{
		Input:     "page.mht",
		Output:    "page.conv.html",
		Mode:      "inline",
		Parts:     4,
		Locations: 3,
		IDs:       2,
		Root:      "<root>",
	})

	out := sb.String()
	assert.Contains(t, out, "Conversion")
	assert.Contains(t, out, "page.mht")
	assert.Contains(t, out, "page.conv.html")
	assert.Contains(t, out, "inline")
	assert.Contains(t, out, "<root>")
}

func TestPrintConversion_NilSummary(t *testing.T) {
	var sb strings.Builder
	NewPrinter(&sb).PrintConversion(nil)
	assert.Empty(t, sb.String())
}
