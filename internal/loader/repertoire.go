// Package loader reads single-cell immune receptor repertoires from the
// on-disk layouts benchmarked by vdjbench.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Contig is one assembled receptor chain.
type Contig struct {
	Barcode    string
	ContigID   string
	Locus      string
	VGene      string
	DGene      string
	JGene      string
	CGene      string
	CDR3       string
	CDR3NT     string
	Reads      int
	UMIs       int
	Productive bool
	IsCell     bool
}

// Repertoire groups contigs by cell barcode.
type Repertoire struct {
	Contigs []Contig
	// Cells maps a barcode to the indexes of its contigs, in file order.
	Cells map[string][]int
	// Order lists barcodes in order of first appearance.
	Order []string
}

func newRepertoire() *Repertoire {
	return &Repertoire{Cells: make(map[string][]int)}
}

func (r *Repertoire) add(c Contig) {
	idx := len(r.Contigs)
	r.Contigs = append(r.Contigs, c)
	if _, ok := r.Cells[c.Barcode]; !ok {
		r.Order = append(r.Order, c.Barcode)
	}
	r.Cells[c.Barcode] = append(r.Cells[c.Barcode], idx)
}

// NumCells returns the number of distinct barcodes.
func (r *Repertoire) NumCells() int {
	return len(r.Order)
}

// columnIndex maps a header to column positions.
type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	return idx
}

func (c columnIndex) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := c[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c columnIndex) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func (c columnIndex) getInt(record []string, name string, line int) (int, error) {
	v := c.get(record, name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Some exporters write counts as floats ("12.0").
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0, fmt.Errorf("line %d: column %s: invalid count %q", line, name, v)
		}
		n = int(f)
	}
	return n, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "t", "1", "yes":
		return true
	}
	return false
}

// readDelimited opens path and feeds each data record to fn along with the
// header index.
func readDelimited(path string, comma rune, required []string, fn func(columnIndex, []string, int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	if comma == '\t' {
		r.LazyQuotes = true
	}

	header, err := r.Read()
	if err == io.EOF {
		return fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return fmt.Errorf("%s: failed to read header: %w", path, err)
	}
	cols := indexHeader(header)
	if err := cols.require(required...); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := fn(cols, record, line); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}
