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


package search

import (
	"errors"
	"fmt"
)

var (
	// ErrExecutorRequired is returned when a graph executor is not provided.
	ErrExecutorRequired = errors.New("graph executor required")

	// ErrProcessorRequired is returned when a result processor is not provided.
	ErrProcessorRequired = errors.New("result processor required")

	// ErrStoreRequired is returned when a result store is not provided.
	ErrStoreRequired = errors.New("result store required")

	// ErrNoConditions is returned when a request carries no usable
	// conditions after validation.
	ErrNoConditions = errors.New("no usable conditions")

	// ErrInvalidMaxAttempts is returned for a non-positive retry budget.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)

// ExecutionError wraps a graph executor failure. It is fatal to the tool
// call and eligible for caller-level retry with a simplified query.
type ExecutionError struct {
	Query string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
