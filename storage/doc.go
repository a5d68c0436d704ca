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

// Package storage provides the storage abstraction layer for prodmatch.
//
// The catalog of internal products is both the vector index consulted by the
// matcher and the metadata store that turns datapoint identifiers into
// display names. CatalogRepository combines the two so that a single backend
// (BadgerDB or PostgreSQL with pgvector) can serve a matching run.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to keep consumers decoupled from a
// specific backend:
//
//	repo, err := badger.NewCatalogRepository(backend)  // returns storage.CatalogRepository
//	repo, err := postgres.NewCatalogRepository(ctx, dsn, dims)
//
// # Distance Convention
//
// Every VectorIndex ranks by cosine distance, 1 - cos(a, b), in [0, 2].
// Lower is closer. Stored vectors are normalized to unit length on insert.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
