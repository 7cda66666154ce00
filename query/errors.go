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


package query

import (
	"errors"
	"fmt"

	"github.com/poiesic/gnosis/core"
)

var (
	// ErrNoConditions is returned when compiling an empty condition list.
	ErrNoConditions = errors.New("no conditions to compile")

	// ErrCannotCompile is the sentinel wrapped by every *CompileError.
	ErrCannotCompile = errors.New("cannot compile condition")
)

// CompileError identifies the condition the compiler could not express.
// A condition is never silently dropped; callers always learn which one
// failed and why.
type CompileError struct {
	Condition *core.Condition // the offending condition, nil for shape errors
	Reason    string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Condition != nil {
		return fmt.Sprintf("cannot compile %s condition %q: %s",
			e.Condition.Kind, e.Condition.Value, e.Reason)
	}
	return fmt.Sprintf("cannot compile: %s", e.Reason)
}

// Unwrap returns the sentinel for errors.Is matching.
func (e *CompileError) Unwrap() error {
	return ErrCannotCompile
}

func newCompileError(cond *core.Condition, format string, args ...any) *CompileError {
	return &CompileError{Condition: cond, Reason: fmt.Sprintf(format, args...)}
}
