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


package core

import (
	"fmt"
	"strings"
)

// ValidateCatalogEntry validates a CatalogEntry before it is indexed.
//
// Validation rules:
//   - ID must not be empty
//   - LongName must not be empty
//   - Vector must not be empty
//
// NOT validated:
//   - Name (optional, the import derives ID from it when present)
//   - timestamps (set by the repository)
func ValidateCatalogEntry(entry *CatalogEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidCatalogEntry)
	}

	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogEntry, ErrEmptyDatapointID)
	}

	if strings.TrimSpace(entry.LongName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogEntry, ErrEmptyLongName)
	}

	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogEntry, ErrEmptyVector)
	}

	return nil
}

// ValidateProducts checks that every uploaded name carries some text.
// Duplicates are allowed.
func ValidateProducts(products []string) error {
	for i, p := range products {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: item %d is blank", ErrInvalidProduct, i)
		}
	}
	return nil
}
