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


// Package expand broadens sparse searches by generating additional
// candidate terms for a condition and merging them back into the
// condition list as weighted siblings.
//
// Expansion never replaces the original condition. Each generated term
// becomes a sibling condition carrying a decayed weight and provenance
// (the term that produced it and the strategies used), so ranking can
// prefer exact matches over expanded ones. Siblings keep the original
// condition's kind, so expanded reference terms still match reference
// syntax; joining them into a query is the caller's concern.
//
// Term generation is delegated to an ai.TermGenerator and treated as
// unreliable: calls are rate limited and time boxed, and a failed or
// timed-out call downgrades to a warning rather than failing the search.
package expand
