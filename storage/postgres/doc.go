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

// Package postgres implements storage.CatalogRepository on PostgreSQL with
// the pgvector extension.
//
// Entries live in a single catalog_entries table whose embedding column is a
// vector of fixed dimensionality, indexed with HNSW over vector_cosine_ops.
// Nearest-neighbor queries use the <=> operator, which returns cosine
// distance and matches the ranking of the BadgerDB backend.
//
// Usage:
//
//	repo, err := postgres.NewCatalogRepository(ctx, os.Getenv("DATABASE_URL"), 768)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
package postgres
