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

package intake

import "errors"

var (
	// ErrInvalidUpload is wrapped by every validation error of this package.
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrEmptyUpload indicates the file has no header row.
	ErrEmptyUpload = errors.New("uploaded file is empty")

	// ErrColumnCount indicates the file does not have exactly one column.
	ErrColumnCount = errors.New("uploaded file must contain exactly one column")

	// ErrUnsupportedFormat indicates a file type other than CSV or XLSX.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
