// Package trace renders a completed run's rows as the CSV output format
// described in the external interfaces: one row per BX, a fixed 16-column
// layout, leading "# "-prefixed comment lines, and a stripped final
// newline.
package trace

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/user-none/rocemu/roc"
)

// columnHeader is the fixed output layout: CLK_N, RESET_B, SOFT_RESET_B,
// ERX_0..ERX_11, FAST_CMD.
var columnHeader = func() []string {
	cols := []string{"CLK_N", "RESET_B", "SOFT_RESET_B"}
	for i := 0; i < roc.NELinks; i++ {
		cols = append(cols, fmt.Sprintf("ERX_%d", i))
	}
	cols = append(cols, "FAST_CMD")
	return cols
}()

// Write renders rows to w: the comment lines first (each given its own
// raw "# "-prefixed line, since encoding/csv has no native comment
// syntax to emit through), then the CSV header and data rows, with the
// trailing newline stripped.
func Write(w io.Writer, comments []string, rows []roc.Row) error {
	var buf bytes.Buffer

	for _, c := range comments {
		fmt.Fprintf(&buf, "# %s\n", c)
	}

	cw := csv.NewWriter(&buf)
	if err := cw.Write(columnHeader); err != nil {
		return fmt.Errorf("trace: writing header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(record(row)); err != nil {
			return fmt.Errorf("trace: writing row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("trace: flushing csv: %w", err)
	}

	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(out); err != nil {
		return fmt.Errorf("trace: writing output: %w", err)
	}
	return bw.Flush()
}

func record(row roc.Row) []string {
	rec := make([]string, 0, len(columnHeader))
	rec = append(rec, fmt.Sprintf("%d", row.CLK))
	rec = append(rec, boolField(row.ResetB))
	rec = append(rec, boolField(row.SoftResetB))
	for _, w := range row.Links {
		rec = append(rec, w.String())
	}
	rec = append(rec, row.Command.String())
	return rec
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
