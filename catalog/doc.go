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

// Package catalog loads the internal product catalog into a
// storage.CatalogRepository and exports it again.
//
// A catalog source is a CSV or XLSX table with a NAME and a LONG_NAME column.
// NAME becomes the datapoint identifier and LONG_NAME the display name whose
// embedding is indexed. Rows without a LONG_NAME are skipped. Rows without a
// NAME get an identifier derived from the LONG_NAME content.
//
// Import embeds rows batch by batch through the same rate-limited dispatcher
// and retrying embedding client used for matching. ExportJSONL writes one
// {"id": NAME, "embedding": LONG_NAME} object per line, the format consumed by
// managed vector index loaders. S3Store reads sources from and writes exports
// to S3 or any S3-compatible object store.
package catalog
