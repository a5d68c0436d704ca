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

package storage

import (
	"fmt"
	"time"

	slops "github.com/mus-format/mus-go/options/slice"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/prodmatch/core"
)

// CatalogEntryMUS is the MUS serializer for core.CatalogEntry.
//
// Layout: ID, Name, LongName (ord strings), the vector as a varint length
// followed by raw float32 values, InsertedAt and UpdatedAt as varint Unix
// microseconds where 0 encodes the zero time.
var CatalogEntryMUS = catalogEntryMUS{}

// vectorMUS serializes embedding vectors.
var vectorMUS = ord.NewSliceSer[float32](raw.Float32, slops.WithLenSer[float32](varint.Int))

type catalogEntryMUS struct{}

func (catalogEntryMUS) Marshal(e core.CatalogEntry, bs []byte) (n int) {
	n = ord.String.Marshal(e.ID, bs)
	n += ord.String.Marshal(e.Name, bs[n:])
	n += ord.String.Marshal(e.LongName, bs[n:])
	n += vectorMUS.Marshal(e.Vector, bs[n:])
	n += varint.Int.Marshal(timeToMicros(e.InsertedAt), bs[n:])
	n += varint.Int.Marshal(timeToMicros(e.UpdatedAt), bs[n:])
	return n
}

func (catalogEntryMUS) Unmarshal(bs []byte) (e core.CatalogEntry, n int, err error) {
	var n1 int
	if e.ID, n1, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	n += n1
	if e.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if e.LongName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1

	// Check the declared length against the remaining bytes before the
	// slice serializer allocates for it.
	var length int
	if length, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	if length < 0 || len(bs)-n-n1 < length*raw.Float32.Size(0) {
		err = fmt.Errorf("%w: vector of %d values", ErrTruncatedData, length)
		return
	}
	if e.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if len(e.Vector) == 0 {
		e.Vector = nil
	}

	var micros int
	if micros, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	e.InsertedAt = microsToTime(micros)
	if micros, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	e.UpdatedAt = microsToTime(micros)
	return
}

func (catalogEntryMUS) Size(e core.CatalogEntry) (size int) {
	size = ord.String.Size(e.ID)
	size += ord.String.Size(e.Name)
	size += ord.String.Size(e.LongName)
	size += vectorMUS.Size(e.Vector)
	size += varint.Int.Size(timeToMicros(e.InsertedAt))
	size += varint.Int.Size(timeToMicros(e.UpdatedAt))
	return
}

func timeToMicros(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	return int(t.UnixMicro())
}

func microsToTime(micros int) time.Time {
	if micros == 0 {
		return time.Time{}
	}
	return time.UnixMicro(int64(micros)).UTC()
}

// MarshalCatalogEntry serializes a CatalogEntry to bytes.
func MarshalCatalogEntry(entry *core.CatalogEntry) []byte {
	buf := make([]byte, CatalogEntryMUS.Size(*entry))
	CatalogEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalCatalogEntry deserializes a CatalogEntry from bytes.
func UnmarshalCatalogEntry(data []byte) (*core.CatalogEntry, error) {
	entry, _, err := CatalogEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}
