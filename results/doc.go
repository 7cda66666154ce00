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


// Package results post-processes raw search hits into the set returned to
// the caller.
//
// The pipeline applies a fixed stage order, each stage skippable through
// Options: hierarchy enrichment (bounded-depth parent and child context,
// fetched concurrently over a worker pool), date-range filtering, fuzzy
// post-filtering, sorting (including seeded random sampling), and
// access-mode-aware limiting. Truncation is never silent: the processed
// set carries the true total and a WasLimited flag.
package results
