package main

import (
	"os"

	"github.com/urfave/cli"

	"tour-sync/internal/config"
	"tour-sync/internal/report"
	"tour-sync/internal/repository"
)

func runsCommand() cli.Command {
	return cli.Command{
		Name:  "runs",
		Usage: "list recent bulk runs from the run ledger",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "limit, n", Value: 20, Usage: "number of runs to show"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := InitConfig(c)
			if err != nil {
				return exitError(err)
			}
			if cfg.LedgerDSN == "" {
				return cli.NewExitError("LEDGER_DSN is not set", 2)
			}
			db, err := config.ConnectDatabase(cfg.LedgerDSN)
			if err != nil {
				return exitError(err)
			}
			runs, err := repository.NewRunRepository(db).ListRuns(c.Int("limit"))
			if err != nil {
				return exitError(err)
			}
			return report.RenderRuns(os.Stdout, runs)
		},
	}
}
