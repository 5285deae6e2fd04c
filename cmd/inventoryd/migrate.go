package main

import (
	"github.com/urfave/cli/v2"

	"github.com/rl1809/inventory-tracker/internal/adapter/storage"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					return runMigrate(c, 0)
				},
			},
			{
				Name:  "down",
				Usage: "roll back the given number of migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1},
				},
				Action: func(c *cli.Context) error {
					return runMigrate(c, -c.Int("steps"))
				},
			},
		},
	}
}

func runMigrate(c *cli.Context, steps int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openMySQL(c.Context, cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	return storage.Migrate(db.DB, steps)
}
