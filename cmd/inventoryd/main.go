package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "inventoryd",
		Usage: "track article stock across two locations",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			importCommand(),
			exportCommand(),
			clearCommand(),
			stressCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("inventoryd failed")
	}
}
