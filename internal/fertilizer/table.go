package fertilizer

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

//go:embed fertilizer.csv
var defaultTable []byte

var ErrUnknownCrop = errors.New("unknown crop")

// Row holds the ideal soil values for one crop.
type Row struct {
	Crop         string
	N            float64
	P            float64
	K            float64
	PH           float64
	SoilMoisture float64
}

// Table is the crop reference table. It is read-only once loaded.
type Table struct {
	rows map[string]Row
}

// Default returns the table bundled with the binary.
func Default() (*Table, error) {
	return Load(bytes.NewReader(defaultTable))
}

func LoadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Load(file)
}

// Load reads a CSV with a header row containing at least Crop, N, P and K.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"crop", "n", "p", "k"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	rows := make(map[string]Row)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := Row{Crop: strings.TrimSpace(record[cols["crop"]])}
		if row.Crop == "" {
			return nil, fmt.Errorf("line %d: empty crop name", line)
		}
		fields := []struct {
			col string
			dst *float64
		}{
			{"n", &row.N}, {"p", &row.P}, {"k", &row.K},
			{"ph", &row.PH}, {"soil_moisture", &row.SoilMoisture},
		}
		for _, f := range fields {
			idx, ok := cols[f.col]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", line, f.col, err)
			}
			*f.dst = v
		}

		key := normalize(row.Crop)
		if _, dup := rows[key]; dup {
			return nil, fmt.Errorf("line %d: duplicate crop %q", line, row.Crop)
		}
		rows[key] = row
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("table has no rows")
	}
	return &Table{rows: rows}, nil
}

// Lookup finds a crop by name, ignoring case and surrounding space.
func (t *Table) Lookup(crop string) (Row, error) {
	row, ok := t.rows[normalize(crop)]
	if !ok {
		return Row{}, fmt.Errorf("%w: %q", ErrUnknownCrop, crop)
	}
	return row, nil
}

func (t *Table) Crops() []string {
	crops := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		crops = append(crops, row.Crop)
	}
	sort.Strings(crops)
	return crops
}

func normalize(crop string) string {
	return strings.ToLower(strings.TrimSpace(crop))
}
