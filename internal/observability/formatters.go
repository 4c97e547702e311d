// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// ConversionSummary describes one completed conversion for display.
type ConversionSummary struct {
	Input     string
	Output    string
	Mode      string
	Parts     int
	Locations int
	IDs       int
	Root      string
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintConversion outputs a human-readable summary of one conversion.
func (p *Printer) PrintConversion(summary *ConversionSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Input:    %s\n", summary.Input))
	sb.WriteString(fmt.Sprintf("Output:   %s\n", summary.Output))
	sb.WriteString(fmt.Sprintf("Mode:     %s\n", summary.Mode))
	sb.WriteString(fmt.Sprintf("Root:     %s\n", summary.Root))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Parts:    %d\n", summary.Parts))
	sb.WriteString(fmt.Sprintf("By loc:   %d\n", summary.Locations))
	sb.WriteString(fmt.Sprintf("By id:    %d", summary.IDs))

	p.printBox("Conversion", sb.String())
}
