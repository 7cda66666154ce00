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


package parser

import (
	"errors"
	"fmt"
)

// ErrMalformedCondition is the sentinel wrapped by every *ParseError.
var ErrMalformedCondition = errors.New("malformed condition")

// ParseError describes why a condition string could not be parsed.
// It wraps ErrMalformedCondition so callers can test with errors.Is.
type ParseError struct {
	Input  string // the full condition text as given
	Reason string // human-readable description of the problem
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed condition %q: %s", e.Input, e.Reason)
}

// Unwrap returns the sentinel for errors.Is matching.
func (e *ParseError) Unwrap() error {
	return ErrMalformedCondition
}

func newParseError(input, format string, args ...any) *ParseError {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...)}
}
