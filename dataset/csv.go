package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Delimiter is the field separator of the CRM export format.
const Delimiter = ';'

// utf8BOM decodes/encodes UTF-8 with a byte-order marker, matching the
// utf-8-sig files the CRM produces and expects.
var utf8BOM = unicode.UTF8BOM

// ReadCSV loads a semicolon-separated table from path. A leading UTF-8 BOM
// is stripped; rows shorter than the header are padded so every cell access
// stays in bounds.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(transform.NewReader(r, utf8BOM.NewDecoder()))
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := New(header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", t.Len()+1, err)
		}
		t.AppendRow(rec)
	}
	return t, nil
}

// WriteCSV persists the table to path as semicolon-separated UTF-8 with a
// BOM, overwriting any previous content.
func WriteCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := writeCSV(f, t); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, t *Table) error {
	tw := transform.NewWriter(w, utf8BOM.NewEncoder())
	cw := csv.NewWriter(tw)
	cw.Comma = Delimiter

	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return tw.Close()
}
