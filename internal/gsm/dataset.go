package gsm

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column positions in the reference CSV.
const (
	colName        = 0
	colTechnology  = 1
	col2GBands     = 2
	col3GBands     = 4
	col4GBands     = 6
	minDatasetCols = col4GBands + 1
)

// Dataset is the in-memory reference table, keyed by exact device name.
// It is read-only after loading and safe for concurrent use.
type Dataset struct {
	byName  map[string]Details
	skipped int
}

// LoadDataset reads the reference CSV at path.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := ParseDataset(f)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return ds, nil
}

// ParseDataset reads reference CSV records from r.
//
// Every record is data; a header row simply becomes an entry nobody looks
// up. Records with fewer than seven columns are skipped. When a name
// appears more than once, the last record wins.
func ParseDataset(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	ds := &Dataset{byName: make(map[string]Details)}
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if first {
			record[colName] = strings.TrimPrefix(record[colName], "\ufeff")
			first = false
		}

		if len(record) < minDatasetCols {
			ds.skipped++
			continue
		}

		ds.byName[record[colName]] = Details{
			Technology:  record[colTechnology],
			TwoGBands:   record[col2GBands],
			ThreeGBands: record[col3GBands],
			FourGBands:  record[col4GBands],
		}
	}
	return ds, nil
}

// Lookup returns the record for an exact device name. A nil Dataset
// knows nothing.
func (d *Dataset) Lookup(name string) (Details, bool) {
	if d == nil {
		return Details{}, false
	}
	det, ok := d.byName[name]
	return det, ok
}

// Len returns the number of distinct device names.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byName)
}

// Skipped returns how many records were too short to use.
func (d *Dataset) Skipped() int {
	if d == nil {
		return 0
	}
	return d.skipped
}
