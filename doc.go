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

// Package prodmatch matches externally supplied product names against an
// internal catalog.
//
// A Service wires the configured catalog store (badger or postgres), the AI
// provider (OpenAI-compatible or Gemini) and the matching pipeline:
//
//	svc, err := prodmatch.NewService(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//	result, err := svc.Match(ctx, products)
//
// The pipeline itself lives in package match; catalog loading in package
// catalog; the HTTP surface in package server.
package prodmatch
