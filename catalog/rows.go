// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/poiesic/prodmatch/core"
	"github.com/xuri/excelize/v2"
)

// Row is one catalog product read from a source table.
type Row struct {
	Name     string
	LongName string

	// id pins the identifier of a row read back from the repository.
	id string
}

// ID returns the datapoint identifier of the row: NAME when present,
// otherwise a content hash of LONG_NAME.
func (r Row) ID() string {
	if r.id != "" {
		return r.id
	}
	if r.Name != "" {
		return r.Name
	}
	return core.IDFromContent(r.LongName).String()
}

// ReadRows reads a catalog table. The format is chosen by extension: .xlsx
// and .xlsm are workbooks, .jsonl is a previous export, everything else is
// CSV.
func ReadRows(filename string, r io.Reader) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jsonl", ".ndjson":
		return ReadJSONL(r)
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(r)
	default:
		records, err = readCSV(r)
	}
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog csv: %w", err)
		}
		records = append(records, record)
	}
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open catalog workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySource
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read catalog rows: %w", err)
	}
	return rows, nil
}

func rowsFromRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrEmptySource
	}

	nameIdx, longIdx := -1, -1
	for i, h := range records[0] {
		switch strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "NAME":
			nameIdx = i
		case "LONG_NAME":
			longIdx = i
		}
	}
	if longIdx == -1 {
		return nil, ErrMissingColumn
	}

	cell := func(record []string, idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, Row{
			Name:     cell(record, nameIdx),
			LongName: cell(record, longIdx),
		})
	}
	return rows, nil
}
