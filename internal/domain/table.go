package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// TableColumns is the column order of the compiled table.
var TableColumns = []string{"zip_start", "zip_end", "bin", "machine", "note", "zip11_start", "zip11_end"}

// WriteTable writes records as a header line plus one comma-separated row per
// record. Plain fields are written unquoted.
func WriteTable(w io.Writer, records []IntervalRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableColumns); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	for i := range records {
		r := &records[i]
		row := []string{r.ZipStart, r.ZipEnd, r.Bin, r.Machine, r.Note, r.Key11Start, r.Key11End}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write table row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeTable renders records as table bytes.
func EncodeTable(records []IntervalRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTablePayload renders records as a base64 table, the form embedded in
// offline lookup pages.
func EncodeTablePayload(records []IntervalRecord) (string, error) {
	data, err := EncodeTable(records)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ReadTable parses a compiled table. Columns are located by header name;
// rows come back in file order.
func ReadTable(r io.Reader) ([]IntervalRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	text := strings.ReplaceAll(string(data), "\r", "")

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range TableColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column: %s", col)
		}
	}

	var out []IntervalRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read table: %w", err)
		}
		line, _ := cr.FieldPos(0)

		field := func(col string) string {
			if i := idx[col]; i < len(row) {
				return row[i]
			}
			return ""
		}
		rec := IntervalRecord{
			ZipStart:   field("zip_start"),
			ZipEnd:     field("zip_end"),
			Bin:        field("bin"),
			Machine:    field("machine"),
			Note:       field("note"),
			Key11Start: field("zip11_start"),
			Key11End:   field("zip11_end"),
		}
		if !isDigits(rec.Key11Start, keyWidth) || !isDigits(rec.Key11End, keyWidth) {
			return nil, fmt.Errorf("table line %d: zip11 keys must be %d digits", line, keyWidth)
		}
		out = append(out, rec)
	}
	return out, nil
}
