// Copyright 2025 Witt Works, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package model defines the core data structures for the application.
// This file defines the error taxonomy shared by the services and the HTTP
// layer. Each kind corresponds to one class of failure with a distinct HTTP
// mapping: configuration and provider errors are server faults, validation
// errors are caller faults, parse errors are fatal to the request with no
// partial results, and timeout errors mark an exhausted bounded poll. None
// of these are retried by this system.
package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an Error for HTTP mapping and logging.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration" // Missing credentials or settings. 500, fatal.
	KindValidation    ErrorKind = "validation"    // Missing or malformed caller input. 400.
	KindProvider      ErrorKind = "provider"      // An upstream call failed. 500, surfaced with upstream detail.
	KindParse         ErrorKind = "parse"         // Generated text violated the expected grammar or invariants. 500.
	KindTimeout       ErrorKind = "timeout"       // Bounded polling exhausted its attempts. 500.
)

// Error is a classified application error. Message is human-readable and safe
// to return to callers; Err carries the raw upstream detail for diagnostics.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped upstream error to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError reports missing credentials or settings.
func NewConfigurationError(message string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: message, Err: err}
}

// NewValidationError reports missing or malformed caller input.
func NewValidationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

// NewProviderError wraps a failed upstream call.
func NewProviderError(message string, err error) *Error {
	return &Error{Kind: KindProvider, Message: message, Err: err}
}

// NewParseError reports generated text that violated the expected grammar or
// a scene count/sequence invariant. Parse errors fail the whole operation.
func NewParseError(message string, err error) *Error {
	return &Error{Kind: KindParse, Message: message, Err: err}
}

// NewTimeoutError reports an exhausted bounded poll loop.
func NewTimeoutError(message string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from err, walking the wrap chain. Unclassified
// errors report as provider errors, the conservative 500 mapping.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProvider
}
