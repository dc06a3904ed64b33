// Command usagectl inspects and administers per-installation quota state.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kailas-cloud/liquiditick/internal/config"
	"github.com/kailas-cloud/liquiditick/internal/db/driver"
	logpkg "github.com/kailas-cloud/liquiditick/internal/logger"
	opprepo "github.com/kailas-cloud/liquiditick/internal/repository/opportunity"
	tierrepo "github.com/kailas-cloud/liquiditick/internal/repository/tier"
	usagerepo "github.com/kailas-cloud/liquiditick/internal/repository/usage"
	usageuc "github.com/kailas-cloud/liquiditick/internal/usecase/usage"
)

const usage = `usagectl administers liquiditick quota state.

Usage:
  usagectl [-env local] <command> [args]

Commands:
  status <installation>        show today's usage, captured emails and tier
  reset <installation>         restore the full daily allowance and set tier to free
  clear <installation>         delete every key owned by the installation
  tier <installation> <tier>   set the tier flag (free or pro)
  list                         list installations with a usage record
  seed                         load demo rows into the opportunity database
  version                      print build metadata
`

func main() {
	fs := flag.NewFlagSet("usagectl", flag.ExitOnError)
	env := fs.String("env", config.GetEnv(), "config environment (local, dev, prod)")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*env)
	if err != nil {
		fail(fmt.Errorf("load config: %w", err))
	}

	logger, err := logpkg.NewLogger(*env, "error")
	if err != nil {
		fail(fmt.Errorf("create logger: %w", err))
	}

	store, err := driver.Open(cfg.Storage)
	if err != nil {
		fail(err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
		fail(fmt.Errorf("storage not ready: %w", err))
	}

	loc, err := cfg.Quota.Location()
	if err != nil {
		fail(err)
	}

	a := &app{
		store:  store,
		prefix: cfg.Storage.KeyPrefix,
		usage: usageuc.NewService(usagerepo.New(store), usageuc.Config{
			KeyPrefix:  cfg.Storage.KeyPrefix,
			DailyLimit: cfg.Quota.DailyLimit,
			Location:   loc,
		}, logger),
		records: usagerepo.New(store),
		tiers:   tierrepo.New(store, cfg.Storage.KeyPrefix),
		openSource: func() (seeder, error) {
			return opprepo.Open(cfg.Source.DSN, true, logger)
		},
		out: os.Stdout,
	}

	if err := a.run(ctx, fs.Args()); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
	os.Exit(1)
}
