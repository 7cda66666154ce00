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


// Package parser turns textual condition mini-language into typed conditions.
//
// It covers two concerns:
//   - parsing "attr:<key>:<type>:<value>" attribute conditions, including the
//     nested boolean expression form "attr:<key>:<type>:(a + b - c)"
//   - building regular expression patterns that match reference syntax
//     (bracket, tag and attribute-declaration forms) without matching the
//     same text appearing as plain prose
//
// Parsing is pure and total: malformed input yields a *ParseError, never a
// panic. Callers drop the offending condition and continue with the rest.
package parser
