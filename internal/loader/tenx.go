package loader

import (
	"path/filepath"
	"strings"
)

// DefaultTenXFilename is the contig annotation file written by Cell Ranger vdj.
const DefaultTenXFilename = "filtered_contig_annotations.csv"

var tenxRequired = []string{"barcode", "contig_id", "chain", "cdr3"}

// LoadTenXCSV reads a 10x Genomics contig annotation CSV from dir.
func LoadTenXCSV(dir, filename string) (*Repertoire, error) {
	if filename == "" {
		filename = DefaultTenXFilename
	}
	rep := newRepertoire()

	err := readDelimited(filepath.Join(dir, filename), ',', tenxRequired, func(cols columnIndex, rec []string, line int) error {
		reads, err := cols.getInt(rec, "reads", line)
		if err != nil {
			return err
		}
		umis, err := cols.getInt(rec, "umis", line)
		if err != nil {
			return err
		}
		isCell := true
		if _, ok := cols["is_cell"]; ok {
			isCell = parseBool(cols.get(rec, "is_cell"))
		}
		// Fields share the line buffer; clone the ones we keep.
		rep.add(Contig{
			Barcode:    strings.Clone(cols.get(rec, "barcode")),
			ContigID:   strings.Clone(cols.get(rec, "contig_id")),
			Locus:      strings.Clone(cols.get(rec, "chain")),
			VGene:      strings.Clone(cols.get(rec, "v_gene")),
			DGene:      strings.Clone(cols.get(rec, "d_gene")),
			JGene:      strings.Clone(cols.get(rec, "j_gene")),
			CGene:      strings.Clone(cols.get(rec, "c_gene")),
			CDR3:       strings.Clone(cols.get(rec, "cdr3")),
			CDR3NT:     strings.Clone(cols.get(rec, "cdr3_nt")),
			Reads:      reads,
			UMIs:       umis,
			Productive: parseBool(cols.get(rec, "productive")),
			IsCell:     isCell,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}
