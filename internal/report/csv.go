package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"tumor-ca/internal/sims/tumor"
)

var csvHeader = []string{
	"step", "time_hours", "day", "rt",
	"biological", "immune", "tumor", "proliferating", "stem", "quiescent", "necrotic",
	"treatment", "injections",
}

// CSVWriter writes one row per simulation step.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter writes the header to w and returns a writer for the rows.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	return &CSVWriter{w: cw}, nil
}

// Write appends the sample as a row.
func (c *CSVWriter) Write(s tumor.Sample) error {
	treatment := "0"
	if s.Treatment {
		treatment = "1"
	}
	row := []string{
		strconv.Itoa(s.Step),
		strconv.Itoa(s.Time),
		strconv.Itoa(s.Day),
		strconv.FormatFloat(s.Rt, 'f', 3, 64),
		strconv.Itoa(s.Biological),
		strconv.Itoa(s.Immune),
		strconv.Itoa(s.Tumor),
		strconv.Itoa(s.Proliferating),
		strconv.Itoa(s.Stem),
		strconv.Itoa(s.Quiescent),
		strconv.Itoa(s.Necrotic),
		treatment,
		strconv.Itoa(s.Injections),
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row for step %d: %w", s.Step, err)
	}
	return nil
}

// Flush writes any buffered rows to the underlying writer.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}
