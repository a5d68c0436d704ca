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

package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrorKind classifies a service failure for retry decisions.
type ErrorKind int

const (
	// Transient failures (timeouts, 5xx, connection resets) may succeed on retry.
	Transient ErrorKind = iota + 1
	// Quota failures are transient but ask the caller to slow down.
	Quota
	// Permanent failures (bad request, auth, unknown model) never succeed on retry.
	Permanent
)

func (k ErrorKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Quota:
		return "quota"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyResponse indicates the service answered without usable content.
	ErrEmptyResponse = errors.New("empty response from service")

	// ErrCountMismatch indicates a batch call returned a different number of vectors.
	ErrCountMismatch = errors.New("embedding count mismatch")
)

// ServiceError is the error type returned by every provider implementation.
// The Kind is decided once, where the provider talks to its SDK.
type ServiceError struct {
	Service    string        // "embedding" or "reasoning"
	Op         string        // provider-specific operation name
	Kind       ErrorKind
	StatusCode int           // HTTP status when known
	RetryAfter time.Duration // server hint, zero when absent
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s error (status %d): %v", e.Service, e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %s error: %v", e.Service, e.Op, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is worth retrying. Unclassified errors are
// treated as permanent so that nothing is retried by accident.
func IsRetryable(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind == Transient || se.Kind == Quota
	}
	return false
}

// IsQuota reports whether err signals an exhausted quota or rate limit.
func IsQuota(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == Quota
}

// RetryAfterHint returns the server supplied retry delay, or zero.
func RetryAfterHint(err error) time.Duration {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}

// KindForStatus maps an HTTP status code to an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return Quota
	case status == 408 || status == 409 || status >= 500:
		return Transient
	default:
		return Permanent
	}
}

// KindForTransportError classifies errors raised below the HTTP layer.
// Caller cancellation is permanent: retrying cannot outlive the caller.
func KindForTransportError(err error) ErrorKind {
	if errors.Is(err, context.Canceled) {
		return Permanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient
	}
	return Permanent
}
