package main

import (
	"log"
	"os"

	hellocli "github.com/go-barry/hello/cli"
	clilib "github.com/urfave/cli/v2"
)

func runApp(args []string) error {
	app := &clilib.App{
		Name:  "hello",
		Usage: "Serve the homepage and health check templates",
		Commands: []*clilib.Command{
			hellocli.InitCommand,
			hellocli.DevCommand,
			hellocli.ProdCommand,
			hellocli.CleanCommand,
			hellocli.CheckCommand,
			hellocli.InfoCommand,
		},
	}

	return app.Run(args)
}

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}
