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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/gnosis/query"
	"github.com/poiesic/gnosis/store"
	"github.com/poiesic/gnosis/store/badger"
)

func main() {
	app := &cli.App{
		Name:  "gnosis",
		Usage: "Structured search tooling for graph knowledge bases",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "compile",
				Usage:  "Compile a request file and print the query plan",
				Action: compileCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "request",
						Aliases:  []string{"r"},
						Usage:    "Path to TOML request file",
						Required: true,
					},
				},
			},
			{
				Name:  "results",
				Usage: "Inspect and combine stored result sets",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List stored result sets of a conversation",
						Action: resultsListCommand,
						Flags:  storeFlags(),
					},
					{
						Name:   "show",
						Usage:  "Print one stored result set",
						Action: resultsShowCommand,
						Flags: append(storeFlags(),
							&cli.StringFlag{
								Name:     "id",
								Usage:    "Result id, e.g. search_001",
								Required: true,
							},
							&cli.BoolFlag{
								Name:  "summary",
								Usage: "Print the truncated summary view instead of the full view",
							},
						),
					},
					{
						Name:   "combine",
						Usage:  "Combine two stored result sets into a new one",
						Action: resultsCombineCommand,
						Flags: append(storeFlags(),
							&cli.StringFlag{
								Name:     "op",
								Usage:    "Set operation (union, intersect, subtract)",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "a",
								Usage:    "Left result id",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "b",
								Usage:    "Right result id",
								Required: true,
							},
							&cli.BoolFlag{
								Name:  "no-dedup",
								Usage: "Keep duplicate items in a union",
							},
						),
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory (overrides config file)",
		},
		&cli.StringFlag{
			Name:     "conversation",
			Usage:    "Conversation id the result sets belong to",
			Required: true,
		},
	}
}

func compileCommand(c *cli.Context) error {
	req, err := loadRequestFile(c.String("request"))
	if err != nil {
		return err
	}

	plan, err := query.Compile(req.conditions, req.combinator, req.scope, query.Options{})
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	if subs := plan.SubQueries(); len(subs) > 0 {
		fmt.Printf("plan: %d sub-queries, node-set intersection\n", len(subs))
		for i, sub := range subs {
			fmt.Printf("--- sub-query %d ---\n%s\n", i+1, sub)
		}
	} else {
		fmt.Println(plan.Text())
	}

	for _, opt := range plan.Optimizations() {
		fmt.Fprintf(os.Stderr, "optimization: %s\n", opt)
	}
	return nil
}

func resultsListCommand(c *cli.Context) error {
	ctx := context.Background()

	st, cleanup, err := openStore(c)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list result sets: %w", err)
	}

	for _, entry := range entries {
		fmt.Printf("%-20s %-12s %-8s turn=%-3d items=%-4d %s\n",
			entry.ResultID,
			entry.Purpose,
			entry.Status,
			entry.Turn,
			len(entry.Data),
			entry.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func resultsShowCommand(c *cli.Context) error {
	ctx := context.Background()

	st, cleanup, err := openStore(c)
	if err != nil {
		return err
	}
	defer cleanup()

	var view *store.View
	if c.Bool("summary") {
		view, err = st.Summary(ctx, c.String("id"))
	} else {
		view, err = st.Full(ctx, c.String("id"))
	}
	if err != nil {
		return fmt.Errorf("failed to load result set: %w", err)
	}

	fmt.Printf("%s (%s, %s)\n", view.ResultID, view.Purpose, view.Status)
	if view.Truncated {
		fmt.Println("note: this set was truncated when stored")
	}
	for i, item := range view.Items {
		fmt.Printf("%3d: [%d] %s", i+1, item.Id, item.NodeTitle)
		if item.MatchedTerm != "" {
			fmt.Printf(" (matched %q via %s)",
				item.MatchedTerm, strings.Join(item.ExpansionUsed, ","))
		}
		fmt.Println()
		if item.Content != "" {
			fmt.Printf("     %s\n", item.Content)
		}
	}
	return nil
}

func resultsCombineCommand(c *cli.Context) error {
	ctx := context.Background()

	op, err := store.ParseSetOp(c.String("op"))
	if err != nil {
		return err
	}

	st, cleanup, err := openStore(c)
	if err != nil {
		return err
	}
	defer cleanup()

	resultID, err := st.Combine(ctx, op, c.String("a"), c.String("b"),
		store.CombineOptions{NoDedup: c.Bool("no-dedup")})
	if err != nil {
		return fmt.Errorf("combine failed: %w", err)
	}

	fmt.Println(resultID)
	return nil
}

// openStore opens the configured badger database and binds a store to the
// conversation named on the command line.
func openStore(c *cli.Context) (*store.Store, func(), error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.DB.Path
	}
	if dbPath == "" {
		return nil, nil, fmt.Errorf("database path is required (--db or config file)")
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo, err := badger.NewResultRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create repository: %w", err)
	}

	st, err := store.New(repo, store.WithConversationID(c.String("conversation")))
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			slog.Error("error closing store", "err", err)
		}
		if err := backend.Close(); err != nil {
			slog.Error("error closing backend storage", "err", err)
		}
	}
	return st, cleanup, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
