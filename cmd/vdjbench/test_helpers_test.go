package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// executeCommand executes a cobra command and returns its output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	resetFlags(root)
	// Mock exit
	oldExit := exit
	exit = func(code int) {
		if code != 0 {
			panic(fmt.Sprintf("exit-%d", code))
		}
	}
	defer func() { exit = oldExit }()

	b := new(bytes.Buffer)
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "exit-") {
				output = b.String()
				err = fmt.Errorf("%s", s)
				return
			}
			panic(r) // Re-panic actual panics
		}
	}()
	root.SetArgs(args)
	root.SetOut(b)
	root.SetErr(b)
	root.SetIn(bytes.NewBufferString(""))
	err = root.Execute()
	return b.String(), err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

const contigHeader = "barcode,is_cell,contig_id,high_confidence,length,chain,v_gene,d_gene,j_gene,c_gene,full_length,productive,cdr3,cdr3_nt,reads,umis,raw_clonotype_id,raw_consensus_id\n"

// makeTenXRoot builds a dataset root whose size-N directory holds N cells.
func makeTenXRoot(t *testing.T, sizes ...int) string {
	t.Helper()
	root := t.TempDir()
	for _, size := range sizes {
		dir := filepath.Join(root, fmt.Sprint(size))
		require.NoError(t, os.Mkdir(dir, 0755))

		var b strings.Builder
		b.WriteString(contigHeader)
		for i := 0; i < size; i++ {
			fmt.Fprintf(&b, "CELL%04d-1,True,CELL%04d-1_contig_1,True,500,TRB,TRBV20-1,None,TRBJ2-7,TRBC2,True,True,CSARDRGLGYEQYF,TGCAGT,%d,%d,clonotype%d,clonotype%d_consensus_1\n", i, i, 100+i, 3, i, i)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, "filtered_contig_annotations.csv"), []byte(b.String()), 0644))
	}
	return root
}
