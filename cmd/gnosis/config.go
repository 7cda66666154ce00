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


package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/poiesic/gnosis/core"
	"github.com/poiesic/gnosis/parser"
)

// fileConfig is the TOML configuration file for the binary.
type fileConfig struct {
	DB struct {
		Path string `toml:"path"`
	} `toml:"db"`
	AI struct {
		Host     string `toml:"host"`
		Model    string `toml:"model"`
		MaxTerms int    `toml:"max_terms"`
	} `toml:"ai"`
	Search struct {
		PoolSize int `toml:"pool_size"`
	} `toml:"search"`
}

// loadConfig reads the TOML config file. A missing path yields zero-value
// defaults so every setting can come from flags instead.
func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// requestFile is the TOML shape of a compile request.
type requestFile struct {
	Scope      string          `toml:"scope"`
	Combinator string          `toml:"combinator"`
	Conditions []conditionFile `toml:"conditions"`
}

type conditionFile struct {
	Kind      string  `toml:"kind"`
	Value     string  `toml:"value"`
	Match     string  `toml:"match"`
	Negate    bool    `toml:"negate"`
	Weight    float64 `toml:"weight"`
	Expansion string  `toml:"expansion"`
}

// parsedRequest is a requestFile resolved into domain types.
type parsedRequest struct {
	conditions []*core.Condition
	combinator core.Combinator
	scope      core.SearchScope
}

func loadRequestFile(path string) (*parsedRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	var file requestFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse request file: %w", err)
	}
	if len(file.Conditions) == 0 {
		return nil, fmt.Errorf("request file has no conditions")
	}

	req := &parsedRequest{
		combinator: core.CombineAnd,
		scope:      core.ScopeBlock,
	}

	switch file.Combinator {
	case "", "and":
	case "or":
		req.combinator = core.CombineOr
	default:
		return nil, fmt.Errorf("invalid combinator %q: must be and or or", file.Combinator)
	}

	if file.Scope != "" {
		scope, err := core.ParseScope(file.Scope)
		if err != nil {
			return nil, fmt.Errorf("invalid scope %q: %w", file.Scope, err)
		}
		req.scope = scope
	}

	for i, cf := range file.Conditions {
		cond, err := buildCondition(cf)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i+1, err)
		}
		req.conditions = append(req.conditions, cond)
	}
	return req, nil
}

func buildCondition(cf conditionFile) (*core.Condition, error) {
	kind, err := parseKind(cf.Kind)
	if err != nil {
		return nil, err
	}

	cond := core.NewCondition(kind, cf.Value)
	cond.Negate = cf.Negate
	if cf.Weight > 0 {
		cond.Weight = cf.Weight
	}
	if cf.Expansion != "" {
		cond.Expansion = core.ExpansionStrategy(cf.Expansion)
	}

	switch cf.Match {
	case "", "contains":
	case "exact":
		cond.Match = core.MatchExact
	default:
		return nil, fmt.Errorf("invalid match mode %q: must be contains or exact", cf.Match)
	}
	if kind == core.KindRegex {
		cond.Match = core.MatchRegex
	}

	// Attribute conditions are written in the mini-language, e.g.
	// attr:status:(todo|doing).
	if kind == core.KindAttribute {
		attr, err := parser.ParseAttributeCondition(cf.Value)
		if err != nil {
			return nil, err
		}
		cond.Attribute = attr
	}

	if err := core.ValidateCondition(cond); err != nil {
		return nil, err
	}
	return cond, nil
}

func parseKind(name string) (core.ConditionKind, error) {
	switch name {
	case "text":
		return core.KindText, nil
	case "node_ref":
		return core.KindNodeRef, nil
	case "entry_ref":
		return core.KindEntryRef, nil
	case "regex":
		return core.KindRegex, nil
	case "attribute":
		return core.KindAttribute, nil
	default:
		return 0, fmt.Errorf("invalid condition kind %q", name)
	}
}
