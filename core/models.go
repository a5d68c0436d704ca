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
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID as fixed-width lowercase hex so it can be used as
// a datapoint identifier.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// CatalogEntry is one internal catalog product as stored in the vector index.
type CatalogEntry struct {
	ID         string    // Datapoint identifier returned by the index
	Name       string    // Short catalog name (NAME column)
	LongName   string    // Human readable display name (LONG_NAME column)
	Vector     []float32 // Normalized embedding of LongName
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Neighbor is a single ranked hit returned by the nearest-neighbor index.
// Score is a distance or a similarity depending on the index metric.
type Neighbor struct {
	DatapointID string
	Score       float32
}

// ResolvedNeighbor is a Neighbor with its display name resolved.
// LongName is nil when the metadata lookup missed or failed.
type ResolvedNeighbor struct {
	DatapointID string  `json:"datapoint_id"`
	LongName    *string `json:"long_name"`
	Score       float32 `json:"-"`
}

// Resolved pairs a neighbor with an optional display name.
func Resolved(n Neighbor, longName *string) ResolvedNeighbor {
	return ResolvedNeighbor{
		DatapointID: n.DatapointID,
		LongName:    longName,
		Score:       n.Score,
	}
}
