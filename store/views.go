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
	"strings"

	"github.com/poiesic/gnosis/core"
)

// SummaryContentLimit is the content length cap for summary views sent
// back into the agent's reasoning context.
const SummaryContentLimit = 100

// View is one rendering of a stored entry. Summary and Full views derive
// from the same entry, never from independent fetches.
type View struct {
	ResultID  string
	Purpose   Purpose
	Status    Status
	Truncated bool
	Items     []*core.ResultItem
}

// Full returns the untruncated view of a stored entry, for user-facing
// consumption.
func (s *Store) Full(ctx context.Context, resultID string) (*View, error) {
	entry, err := s.Get(ctx, resultID)
	if err != nil {
		return nil, err
	}
	return &View{
		ResultID:  entry.ResultID,
		Purpose:   entry.Purpose,
		Status:    entry.Status,
		Truncated: entry.Truncated,
		Items:     entry.Data,
	}, nil
}

// Summary returns the same entry with content truncated for the agent's
// context. Stored data is never modified; items are copied.
func (s *Store) Summary(ctx context.Context, resultID string) (*View, error) {
	entry, err := s.Get(ctx, resultID)
	if err != nil {
		return nil, err
	}
	return &View{
		ResultID:  entry.ResultID,
		Purpose:   entry.Purpose,
		Status:    entry.Status,
		Truncated: entry.Truncated,
		Items:     summarizeItems(entry.Data),
	}, nil
}

func summarizeItems(items []*core.ResultItem) []*core.ResultItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]*core.ResultItem, 0, len(items))
	for _, item := range items {
		copied := *item
		copied.Content = truncateContent(item.Content)
		copied.Children = summarizeItems(item.Children)
		copied.Parents = summarizeItems(item.Parents)
		out = append(out, &copied)
	}
	return out
}

// truncateContent cuts at the last word boundary before the limit so the
// summary does not end mid-word.
func truncateContent(content string) string {
	if len(content) <= SummaryContentLimit {
		return content
	}
	cut := content[:SummaryContentLimit]
	if idx := strings.LastIndexByte(cut, ' '); idx > SummaryContentLimit/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}
