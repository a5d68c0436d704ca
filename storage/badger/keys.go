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

package badger

import (
	"fmt"

	"github.com/poiesic/prodmatch/storage"
)

const (
	catalogEntryPrefix = "catent"
)

var errClosed = fmt.Errorf("badger: %w", storage.ErrStorageClosed)

// makeCatalogEntryKey generates a key for a catalog entry by datapoint ID.
// Format: prefix:datapointID
func makeCatalogEntryKey(datapointID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", catalogEntryPrefix, datapointID))
}

// catalogScanPrefix is the iteration prefix covering every catalog entry.
func catalogScanPrefix() []byte {
	return []byte(catalogEntryPrefix + ":")
}
