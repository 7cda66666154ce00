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


// Package mock provides test doubles for the ai package interfaces.
//
// The mocks are deterministic and require no network or model. Override
// behavior per test by assigning the exported Func fields:
//
//	gen := mock.NewMockTermGenerator()
//	gen.GenerateTermsFunc = func(ctx context.Context, term string, strategy core.ExpansionStrategy, hints []string) ([]string, error) {
//	    return []string{"velocity", "throughput"}, nil
//	}
//
// Call counts are tracked so tests can assert how many generation requests
// a search actually issued.
package mock
