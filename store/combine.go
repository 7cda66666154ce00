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

import (
	"context"

	"github.com/poiesic/gnosis/core"
)

// SetOp is a set-algebra operation over stored result sets.
type SetOp int

const (
	OpUnion SetOp = iota + 1
	OpIntersect
	OpSubtract
)

// String returns the wire name of the operation.
func (op SetOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpIntersect:
		return "intersect"
	case OpSubtract:
		return "subtract"
	default:
		return "unknown"
	}
}

// ParseSetOp parses a set operation name.
func ParseSetOp(name string) (SetOp, error) {
	switch name {
	case "union":
		return OpUnion, nil
	case "intersect":
		return OpIntersect, nil
	case "subtract":
		return OpSubtract, nil
	default:
		return 0, ErrInvalidOp
	}
}

// CombineOptions tunes the set algebra. The zero value keeps first-seen
// order and deduplicates, which is what almost every caller wants.
type CombineOptions struct {
	// NoDedup keeps duplicate items instead of collapsing them by id.
	// Ignored for intersect and subtract, which are inherently
	// membership-based.
	NoDedup bool
}

// Combine applies a set operation to two stored result sets and stores
// the outcome as a new intermediate entry, returning its identifier.
// Items are keyed by their stable id; first-seen order is preserved.
// Union is commutative and idempotent; intersect and subtract are not
// commutative.
func (s *Store) Combine(ctx context.Context, op SetOp, aID, bID string, opts CombineOptions) (string, error) {
	a, err := s.Get(ctx, aID)
	if err != nil {
		return "", err
	}
	b, err := s.Get(ctx, bID)
	if err != nil {
		return "", err
	}

	var combined []*core.ResultItem
	switch op {
	case OpUnion:
		combined = unionItems(a.Data, b.Data, opts.NoDedup)
	case OpIntersect:
		combined = intersectItems(a.Data, b.Data)
	case OpSubtract:
		combined = subtractItems(a.Data, b.Data)
	default:
		return "", ErrInvalidOp
	}

	s.logger.Debug("combined result sets",
		"op", op.String(), "a", aID, "b", bID, "items", len(combined))
	return s.PutTruncated(ctx, "combine", combined, PurposeIntermediate,
		a.Truncated || b.Truncated)
}

func unionItems(a, b []*core.ResultItem, noDedup bool) []*core.ResultItem {
	out := make([]*core.ResultItem, 0, len(a)+len(b))
	if noDedup {
		out = append(out, a...)
		return append(out, b...)
	}

	seen := make(map[core.ID]bool, len(a)+len(b))
	for _, item := range a {
		if !seen[item.Id] {
			seen[item.Id] = true
			out = append(out, item)
		}
	}
	for _, item := range b {
		if !seen[item.Id] {
			seen[item.Id] = true
			out = append(out, item)
		}
	}
	return out
}

func intersectItems(a, b []*core.ResultItem) []*core.ResultItem {
	inB := make(map[core.ID]bool, len(b))
	for _, item := range b {
		inB[item.Id] = true
	}

	seen := make(map[core.ID]bool, len(a))
	out := make([]*core.ResultItem, 0, len(a))
	for _, item := range a {
		if inB[item.Id] && !seen[item.Id] {
			seen[item.Id] = true
			out = append(out, item)
		}
	}
	return out
}

func subtractItems(a, b []*core.ResultItem) []*core.ResultItem {
	inB := make(map[core.ID]bool, len(b))
	for _, item := range b {
		inB[item.Id] = true
	}

	seen := make(map[core.ID]bool, len(a))
	out := make([]*core.ResultItem, 0, len(a))
	for _, item := range a {
		if !inB[item.Id] && !seen[item.Id] {
			seen[item.Id] = true
			out = append(out, item)
		}
	}
	return out
}
