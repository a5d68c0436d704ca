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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/storage"
)

// ExportLine is one line of a JSONL catalog export.
type ExportLine struct {
	ID        string    `json:"id"`
	Embedding string    `json:"embedding"`
	Vector    []float32 `json:"vector,omitempty"`
}

// ExportJSONL writes every catalog entry to w as one JSON object per line,
// in datapoint identifier order. The stored vector is included only when
// withVectors is set. It returns the number of lines written.
func ExportJSONL(ctx context.Context, repo storage.CatalogRepository, w io.Writer, withVectors bool) (int, error) {
	if repo == nil {
		return 0, ErrRepositoryRequired
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	count := 0
	err := repo.ForEach(ctx, func(entry *core.CatalogEntry) error {
		line := ExportLine{ID: entry.ID, Embedding: entry.LongName}
		if withVectors {
			line.Vector = entry.Vector
		}
		if err := enc.Encode(&line); err != nil {
			return fmt.Errorf("encode %s: %w", entry.ID, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("flush export: %w", err)
	}
	return count, nil
}

// ReadJSONL reads an export back into rows, NAME from "id" and LONG_NAME
// from "embedding". Blank lines are ignored.
func ReadJSONL(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		data := scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		var line ExportLine
		if err := json.Unmarshal(data, &line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rows = append(rows, Row{Name: line.ID, LongName: line.Embedding})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
