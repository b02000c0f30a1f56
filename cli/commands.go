package cli

import (
	"github.com/go-barry/hello"
	"github.com/go-barry/hello/core"

	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Value:   core.DefaultConfigPath,
	Usage:   "path to the site config file",
}

func serveFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Value: hello.DefaultHost,
			Usage: "address to bind",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   hello.DefaultPort,
			Usage:   "port to listen on",
		},
		configFlag,
	}
	return append(flags, extra...)
}

func runtimeConfig(c *cli.Context, env string) hello.RuntimeConfig {
	return hello.RuntimeConfig{
		Env:        env,
		Cache:      cacheMode(c),
		Host:       c.String("host"),
		Port:       c.Int("port"),
		ConfigPath: c.String("config"),
	}
}

// cacheMode applies --cache only when it was given, so the config file
// decides otherwise.
func cacheMode(c *cli.Context) hello.CacheMode {
	if !c.IsSet("cache") {
		return hello.CacheFromConfig
	}
	if c.Bool("cache") {
		return hello.CacheOn
	}
	return hello.CacheOff
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start in debug mode (template reload, live reload, no caching)",
	Flags: serveFlags(),
	Action: func(c *cli.Context) error {
		return hello.Start(runtimeConfig(c, "dev"))
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start in production mode (page caching follows the config unless --cache is given)",
	Flags: serveFlags(&cli.BoolFlag{
		Name:  "cache",
		Usage: "cache rendered pages under outputDir, overriding the config file",
	}),
	Action: func(c *cli.Context) error {
		return hello.Start(runtimeConfig(c, "prod"))
	},
}
