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

// Package intake turns an uploaded product list into the clean, deduplicated
// list of names handed to the matcher.
//
// An upload is a single-column table, CSV or XLSX, whose first row is a
// header. Every value is NFKC-normalized, trimmed and lowercased. Empty rows
// are dropped, and so are duplicates after normalization, keeping the first
// occurrence. Any shape violation is returned as a validation error wrapping
// ErrInvalidUpload so that callers can report it to the client.
package intake
