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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidCondition indicates a Condition failed validation.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrEmptyValue indicates the condition Value field is empty.
	ErrEmptyValue = errors.New("condition value cannot be empty")

	// ErrInvalidKind indicates an unknown ConditionKind value.
	ErrInvalidKind = errors.New("invalid condition kind")

	// ErrInvalidMatchMode indicates an unknown MatchMode value.
	ErrInvalidMatchMode = errors.New("invalid match mode")

	// ErrInvalidPattern indicates a regex condition whose pattern does not compile.
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrInvalidWeight indicates a condition weight outside (0, 1].
	ErrInvalidWeight = errors.New("condition weight must be in (0, 1]")

	// ErrInvalidAttributeCondition indicates an AttributeCondition failed validation.
	ErrInvalidAttributeCondition = errors.New("invalid attribute condition")

	// ErrEmptyAttributeKey indicates the attribute Key field is empty.
	ErrEmptyAttributeKey = errors.New("attribute key cannot be empty")

	// ErrNoAttributeValues indicates an attribute condition without values.
	ErrNoAttributeValues = errors.New("attribute condition needs at least one value")

	// ErrInvalidOperator indicates an unknown ValueOperator value.
	ErrInvalidOperator = errors.New("invalid value operator")

	// ErrInvalidScope indicates an unknown SearchScope value.
	ErrInvalidScope = errors.New("invalid search scope")

	// ErrInvalidCombinator indicates an unknown Combinator value.
	ErrInvalidCombinator = errors.New("invalid combinator")

	// ErrEmptyGroup indicates a condition group without children.
	ErrEmptyGroup = errors.New("condition group cannot be empty")
)
