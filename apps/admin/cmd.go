package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/shule/core/dashboard"
)

var errHelp = errors.New("help provided")

// StatsProvider computes the dashboard statistics.
type StatsProvider interface {
	Stats(ctx context.Context) (dashboard.Stats, error)
}

type commandLine struct {
	db    *sqlx.DB
	stats StatsProvider
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	_, _ = fmt.Fprintln(cli.out, "  stats                  - print the dashboard statistics")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "stats":
		return cli.printStats(context.Background())
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) printStats(ctx context.Context) error {
	stats, err := cli.stats.Stats(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
