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


// Package search orchestrates one search tool call end to end: validate
// conditions, compile them to a graph query, execute, decide whether the
// result set is sparse enough to broaden semantically, re-execute with
// expanded terms, post-process, and store the outcome under a stable
// result identifier.
//
// Failures follow a partial-success discipline. Malformed conditions are
// dropped with a warning; expansion failures fall back to the unexpanded
// set; only an unreachable or rejecting graph executor aborts the call,
// as a typed ExecutionError the caller can retry. Nothing is written to
// the result store on a failed or cancelled call.
package search
