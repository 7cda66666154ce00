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


// Package store is the result lifecycle store: it assigns stable
// identifiers to result sets, caches them across conversation turns, and
// lets a later query reference an earlier result as its scope instead of
// re-scanning the graph.
//
// Identifiers are monotonically increasing per conversation and tool
// (search_001, search_002, ...). Entries are never mutated in place; a
// changed result set gets a new entry under a new identifier, and entries
// from invalidated turns are marked stale rather than deleted. Set
// algebra (union, intersect, subtract) operates on stored identifiers and
// produces new entries.
//
// Two views derive from the same stored entry: Summary truncates content
// for the agent's reasoning context, Full keeps it intact for the user
// surface. They are never fetched independently.
//
// Persistence lives behind the Repository interface; the badger
// subpackage provides the BadgerDB implementation.
package store
