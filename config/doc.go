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

// Package config loads the service configuration.
//
// Settings come from three layers, later ones winning: built-in defaults, an
// optional YAML file, and environment variables. Command-line flags are
// applied on top by cmd/prodmatch.
//
// Example file:
//
//	ai:
//	  provider: gemini
//	  embedding_model: text-embedding-005
//	  reasoning_model: gemini-2.0-flash
//	  embedding_dimensions: 768
//	match:
//	  batch_size: 50
//	  max_calls_per_minute: 60
//	  confident_threshold: 0.1
//	  uncertain_threshold: 0.3
//	storage:
//	  driver: postgres
//	  database_url: postgres://prodmatch@localhost/prodmatch
//	server:
//	  addr: :8080
//	  static_dir: ./frontend/build
package config
