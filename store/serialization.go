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
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/gnosis/core"
)

// MUS serializers for the stored types. Timestamps are encoded as Unix
// microseconds.

var (
	// ResultItemMUS serializes a result item, recursing into its parent
	// and child context.
	ResultItemMUS = resultItemMUS{}

	// EntryMUS serializes a stored entry.
	EntryMUS = entryMUS{}

	stringSliceMUS = ord.NewSliceSer[string](ord.String)
)

type resultItemMUS struct{}

func (s resultItemMUS) Marshal(v core.ResultItem, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += varint.Uint64.Marshal(uint64(v.ParentNodeId), bs[n:])
	n += ord.String.Marshal(v.NodeTitle, bs[n:])
	n += varint.Int64.Marshal(v.Created.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(v.Modified.UnixMicro(), bs[n:])
	n += ord.Bool.Marshal(v.IsEntry, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += varint.Float64.Marshal(v.Score, bs[n:])
	n += ord.String.Marshal(v.MatchedTerm, bs[n:])
	n += stringSliceMUS.Marshal(v.ExpansionUsed, bs[n:])
	n += s.marshalItems(v.Children, bs[n:])
	n += s.marshalItems(v.Parents, bs[n:])
	return
}

func (s resultItemMUS) Unmarshal(bs []byte) (v core.ResultItem, n int, err error) {
	var (
		id, parent         uint64
		created, modified  int64
		n1                 int
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = core.ID(id)

	parent, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ParentNodeId = core.ID(parent)

	v.NodeTitle, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	created, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Created = time.UnixMicro(created).UTC()

	modified, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Modified = time.UnixMicro(modified).UTC()

	v.IsEntry, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	v.Score, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	v.MatchedTerm, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	v.ExpansionUsed, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	v.Children, n1, err = s.unmarshalItems(bs[n:])
	n += n1
	if err != nil {
		return
	}

	v.Parents, n1, err = s.unmarshalItems(bs[n:])
	n += n1
	return
}

func (s resultItemMUS) Size(v core.ResultItem) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += varint.Uint64.Size(uint64(v.ParentNodeId))
	size += ord.String.Size(v.NodeTitle)
	size += varint.Int64.Size(v.Created.UnixMicro())
	size += varint.Int64.Size(v.Modified.UnixMicro())
	size += ord.Bool.Size(v.IsEntry)
	size += ord.String.Size(v.Content)
	size += varint.Float64.Size(v.Score)
	size += ord.String.Size(v.MatchedTerm)
	size += stringSliceMUS.Size(v.ExpansionUsed)
	size += s.sizeItems(v.Children)
	size += s.sizeItems(v.Parents)
	return
}

func (s resultItemMUS) marshalItems(items []*core.ResultItem, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(items), bs)
	for _, item := range items {
		n += s.Marshal(*item, bs[n:])
	}
	return
}

func (s resultItemMUS) unmarshalItems(bs []byte) (items []*core.ResultItem, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	items = make([]*core.ResultItem, 0, length)
	for i := 0; i < length; i++ {
		var (
			item core.ResultItem
			n1   int
		)
		item, n1, err = s.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		items = append(items, &item)
	}
	return
}

func (s resultItemMUS) sizeItems(items []*core.ResultItem) (size int) {
	size = varint.PositiveInt.Size(len(items))
	for _, item := range items {
		size += s.Size(*item)
	}
	return
}

type entryMUS struct{}

func (s entryMUS) Marshal(v Entry, bs []byte) (n int) {
	n = ord.String.Marshal(v.ResultID, bs)
	n += ord.String.Marshal(v.ConversationID, bs[n:])
	n += ord.String.Marshal(v.ToolName, bs[n:])
	n += varint.PositiveInt.Marshal(int(v.Purpose), bs[n:])
	n += varint.PositiveInt.Marshal(int(v.Status), bs[n:])
	n += varint.PositiveInt.Marshal(v.Turn, bs[n:])
	n += varint.Int64.Marshal(v.Timestamp.UnixMicro(), bs[n:])
	n += ord.Bool.Marshal(v.Truncated, bs[n:])
	n += ResultItemMUS.marshalItems(v.Data, bs[n:])
	return
}

func (s entryMUS) Unmarshal(bs []byte) (v Entry, n int, err error) {
	var (
		num int
		ts  int64
		n1  int
	)
	v.ResultID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}

	v.ConversationID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	v.ToolName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	num, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Purpose = Purpose(num)

	num, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status = Status(num)

	v.Turn, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	ts, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp = time.UnixMicro(ts).UTC()

	v.Truncated, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	v.Data, n1, err = ResultItemMUS.unmarshalItems(bs[n:])
	n += n1
	return
}

func (s entryMUS) Size(v Entry) (size int) {
	size = ord.String.Size(v.ResultID)
	size += ord.String.Size(v.ConversationID)
	size += ord.String.Size(v.ToolName)
	size += varint.PositiveInt.Size(int(v.Purpose))
	size += varint.PositiveInt.Size(int(v.Status))
	size += varint.PositiveInt.Size(v.Turn)
	size += varint.Int64.Size(v.Timestamp.UnixMicro())
	size += ord.Bool.Size(v.Truncated)
	size += ResultItemMUS.sizeItems(v.Data)
	return
}

// MarshalEntry serializes an Entry to bytes.
func MarshalEntry(entry *Entry) []byte {
	buf := make([]byte, EntryMUS.Size(*entry))
	EntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalEntry deserializes an Entry from bytes.
func UnmarshalEntry(data []byte) (*Entry, error) {
	entry, _, err := EntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &entry, nil
}
