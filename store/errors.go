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


package store

import "errors"

var (
	// ErrNotFound indicates that the requested entry was not found.
	ErrNotFound = errors.New("entry not found")

	// ErrRepositoryRequired indicates no repository was provided.
	ErrRepositoryRequired = errors.New("repository is required")

	// ErrEmptyToolName indicates an entry was stored without a tool name.
	ErrEmptyToolName = errors.New("tool name cannot be empty")

	// ErrInvalidPurpose indicates an unknown entry purpose.
	ErrInvalidPurpose = errors.New("invalid entry purpose")

	// ErrInvalidOp indicates an unknown set operation.
	ErrInvalidOp = errors.New("invalid set operation")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
