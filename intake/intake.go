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

package intake

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// Format is an upload file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
)

var zipMagic = []byte("PK\x03\x04")

// DetectFormat picks the format from the file extension, falling back to
// sniffing the content when the extension says nothing.
func DetectFormat(filename string, head []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case "":
		if bytes.HasPrefix(head, zipMagic) {
			return FormatXLSX
		}
		return FormatCSV
	default:
		return FormatUnknown
	}
}

// Parse reads an upload and returns its normalized, deduplicated values.
// A file with a header and no data rows yields an empty, non-nil slice.
func Parse(filename string, r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zipMagic))

	var (
		values []string
		err    error
	)
	switch DetectFormat(filename, head) {
	case FormatCSV:
		values, err = ReadCSV(br)
	case FormatXLSX:
		values, err = ReadXLSX(br)
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidUpload, ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	return Clean(values), nil
}

// ReadCSV returns the raw data values of a single-column CSV file, header
// excluded.
func ReadCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpload, ErrEmptyUpload)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpload, err)
	}
	if len(header) != 1 {
		return nil, fmt.Errorf("%w: %w: header has %d columns", ErrInvalidUpload, ErrColumnCount, len(header))
	}

	values := []string{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidUpload, err)
		}
		if len(record) != 1 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: %w: line %d has %d columns", ErrInvalidUpload, ErrColumnCount, line, len(record))
		}
		values = append(values, record[0])
	}
	return values, nil
}

// ReadXLSX returns the raw data values of the first sheet of a workbook,
// header excluded. Trailing empty cells do not count as columns.
func ReadXLSX(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrInvalidUpload, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpload, ErrEmptyUpload)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %w", ErrInvalidUpload, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpload, ErrEmptyUpload)
	}
	if len(rows[0]) != 1 {
		return nil, fmt.Errorf("%w: %w: header has %d columns", ErrInvalidUpload, ErrColumnCount, len(rows[0]))
	}

	values := []string{}
	for i, row := range rows[1:] {
		switch len(row) {
		case 0:
			values = append(values, "")
		case 1:
			values = append(values, row[0])
		default:
			return nil, fmt.Errorf("%w: %w: row %d has %d columns", ErrInvalidUpload, ErrColumnCount, i+2, len(row))
		}
	}
	return values, nil
}

// NormalizeName applies NFKC, trims surrounding whitespace and lowercases.
func NormalizeName(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// Clean normalizes values, drops empty ones and removes duplicates keeping
// the first occurrence.
func Clean(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = NormalizeName(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
