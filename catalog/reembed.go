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
	"context"
	"fmt"

	"github.com/poiesic/prodmatch/core"
)

// Reembed embeds the LONG_NAME of every stored entry again and replaces its
// vector, keeping the datapoint identifier. Run it after switching embedding
// models; vectors from different models are not comparable.
//
// Batching, rate limiting and failure accounting are the same as Import.
func (i *Importer) Reembed(ctx context.Context) (ImportStats, error) {
	var rows []Row
	err := i.repo.ForEach(ctx, func(entry *core.CatalogEntry) error {
		rows = append(rows, Row{id: entry.ID, Name: entry.Name, LongName: entry.LongName})
		return nil
	})
	if err != nil {
		return ImportStats{}, fmt.Errorf("scan catalog: %w", err)
	}
	if len(rows) == 0 {
		i.logger.Info("catalog is empty, nothing to re-embed")
		return ImportStats{}, nil
	}

	i.logger.Info("re-embedding catalog", "entries", len(rows))
	return i.Import(ctx, rows)
}
