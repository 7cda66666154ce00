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


package expand

import "errors"

var (
	// ErrGeneratorRequired indicates no term generator was provided.
	ErrGeneratorRequired = errors.New("term generator is required")

	// ErrInvalidDecay indicates a weight decay factor outside (0, 1].
	ErrInvalidDecay = errors.New("decay factor must be in (0, 1]")

	// ErrInvalidTimeout indicates a non-positive per-call timeout.
	ErrInvalidTimeout = errors.New("call timeout must be positive")
)
