package loader

import (
	"path/filepath"
	"strings"
)

// DefaultAIRRFilename is the rearrangement table read by the AIRR loader.
const DefaultAIRRFilename = "airr_rearrangement.tsv"

var airrRequired = []string{"cell_id", "sequence_id", "locus", "junction_aa"}

// LoadAIRRTSV reads an AIRR rearrangement TSV from dir.
func LoadAIRRTSV(dir, filename string) (*Repertoire, error) {
	if filename == "" {
		filename = DefaultAIRRFilename
	}
	rep := newRepertoire()

	err := readDelimited(filepath.Join(dir, filename), '\t', airrRequired, func(cols columnIndex, rec []string, line int) error {
		reads, err := cols.getInt(rec, "consensus_count", line)
		if err != nil {
			return err
		}
		umis, err := cols.getInt(rec, "duplicate_count", line)
		if err != nil {
			return err
		}
		rep.add(Contig{
			Barcode:    strings.Clone(cols.get(rec, "cell_id")),
			ContigID:   strings.Clone(cols.get(rec, "sequence_id")),
			Locus:      strings.Clone(cols.get(rec, "locus")),
			VGene:      strings.Clone(cols.get(rec, "v_call")),
			DGene:      strings.Clone(cols.get(rec, "d_call")),
			JGene:      strings.Clone(cols.get(rec, "j_call")),
			CGene:      strings.Clone(cols.get(rec, "c_call")),
			CDR3:       strings.Clone(cols.get(rec, "junction_aa")),
			CDR3NT:     strings.Clone(cols.get(rec, "junction")),
			Reads:      reads,
			UMIs:       umis,
			Productive: parseBool(cols.get(rec, "productive")),
			IsCell:     true,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}
