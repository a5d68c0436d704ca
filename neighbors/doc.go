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

// Package neighbors queries a vector index for the catalog entries closest
// to a batch of embeddings.
//
// Client.Query returns exactly one ranked neighbor list per query vector, in
// the same order as the input. An empty list means the index had nothing to
// offer for that vector. Any index failure fails the whole batch so that the
// caller can account for every item of it.
package neighbors
