package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// The survey tool exports tab-separated text in UTF-16 with a byte-order
// mark. Quoted fields use '"', decimal point is '.'.

// ReadTSV reads a whole UTF-16 TSV export into records. The first record is
// the header. An unreadable or undecodable file is a fatal condition for the
// caller; no partial data is returned.
func ReadTSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	r := csv.NewReader(transform.NewReader(f, dec))
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse export %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse export %s: empty file", path)
	}
	return records, nil
}

// WriteTSV writes records back in the export's native encoding (UTF-16
// little-endian with BOM, tab-separated). The file is written to a temp
// file and renamed into place so the export is never left half-written.
func WriteTSV(path string, records [][]string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	tw := transform.NewWriter(f, enc)
	w := csv.NewWriter(tw)
	w.Comma = '\t'
	if err := w.WriteAll(records); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write export %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write export %s: %w", path, err)
	}
	if err := tw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close export %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace export %s: %w", path, err)
	}
	return nil
}
