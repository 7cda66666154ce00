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


// Package query compiles typed condition trees into the declarative
// pattern-based dialect spoken by the external graph executor.
//
// The package builds an explicit query AST (find spec, pattern clauses,
// predicate clauses, not/or wrappers) and serializes it through a single
// writer that owns all escaping of string and regex literals. Call sites
// never splice user text into query strings directly.
//
// Two query shapes exist:
//   - block scope: every condition clause is anchored to one entry variable,
//     so all conditions must co-occur in the same entry
//   - content scope: conditions may be satisfied by different entries of the
//     same node; AND across entries cannot be expressed as per-entry boolean
//     logic and is compiled as one sub-query per condition whose node sets
//     the caller intersects
//
// When a set of OR-combined conditions are all plain text or reference
// matches, the compiler folds them into a single regex alternation so the
// executor performs one match pass instead of N.
package query
