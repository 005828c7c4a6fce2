package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/KaramelBytes/salesloom-cli/internal/utils"
)

// WriteCSV writes the table, index first, to path using an atomic rename.
func WriteCSV(t *Table, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return &LoadError{Kind: ErrFileAccess, Op: "write csv", Path: path, Err: err}
	}
	return nil
}
