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

package catalog

import "errors"

var (
	// ErrMissingColumn indicates the source table has no LONG_NAME column.
	ErrMissingColumn = errors.New("catalog source must have a LONG_NAME column")

	// ErrEmptySource indicates the source has no header row.
	ErrEmptySource = errors.New("catalog source is empty")

	// ErrObjectNotFound indicates the requested object does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidS3URI indicates a location that is not s3://bucket/key.
	ErrInvalidS3URI = errors.New("invalid s3 uri")

	// ErrRepositoryRequired indicates a nil repository was supplied.
	ErrRepositoryRequired = errors.New("catalog repository is required")
)
