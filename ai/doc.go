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


// Package ai provides abstractions for the term-generation service used by
// semantic expansion.
//
// The package defines the TermGenerator interface consumed by the expansion
// engine and a Provider that manages generator lifecycle. Production
// implementations live in subpackages (ai/openai for OpenAI-compatible
// services via langchaingo); ai/mock provides test doubles.
//
// Generation is best-effort by contract: callers time-box every call and
// treat failures as "no extra terms", never as a fatal search error.
package ai
