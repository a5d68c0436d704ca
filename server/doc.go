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

// Package server exposes the matcher over HTTP.
//
// Routes:
//
//	POST /api/match   multipart upload, file field "external"; returns the
//	                  MatchResult as JSON
//	GET  /api         welcome text
//	GET  /healthz     liveness check
//	GET  /            optional static frontend with index.html fallback
//
// Upload validation failures are reported with status 400 and a body of the
// form {"error": "..."}. A run that hits the request deadline still returns
// its complete result, with unprocessed products listed as unmatched.
//
// Every request carries an X-Request-ID, taken from the request or
// generated, which is echoed in the response and attached to every log line.
package server
