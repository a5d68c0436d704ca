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

import "errors"

// Domain validation errors
var (
	// ErrInvalidCatalogEntry indicates a CatalogEntry failed validation.
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")

	// ErrEmptyDatapointID indicates the entry ID is empty.
	ErrEmptyDatapointID = errors.New("datapoint id cannot be empty")

	// ErrEmptyLongName indicates the entry LongName is empty.
	ErrEmptyLongName = errors.New("long name cannot be empty")

	// ErrEmptyVector indicates an entry reached the index without an embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrInvalidProduct indicates an uploaded product name is unusable.
	ErrInvalidProduct = errors.New("invalid product name")

	// ErrIncompletePartition indicates a MatchResult does not cover its input exactly once.
	ErrIncompletePartition = errors.New("match result is not a partition of the input")
)
