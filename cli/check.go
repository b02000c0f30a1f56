package cli

import (
	"fmt"
	"html/template"

	"github.com/go-barry/hello/core"
	"github.com/urfave/cli/v2"
)

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Parse and render every page template",
	Flags: []cli.Flag{configFlag},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))
		out := c.App.Writer
		funcs := core.TemplateFuncs(core.AssetContext{
			Env:       "dev",
			StaticDir: config.StaticDir,
			CacheDir:  config.OutputDir,
		})

		var failed, missing bool
		for _, route := range core.Routes {
			if err := checkRoute(config, route, funcs); err != nil {
				failed = true
				missing = missing || core.IsNotFoundError(err)
				fmt.Fprintf(out, "❌ %s (%s) → %v\n", route.Path, route.Template, err)
				continue
			}
			fmt.Fprintf(out, "✅ %s (%s)\n", route.Path, route.Template)
		}

		if missing {
			fmt.Fprintln(out, "💡 Run `hello init` to create the starter templates.")
		}
		if failed {
			return cli.Exit("some templates failed to compile", 1)
		}

		fmt.Fprintln(out, "✅ All templates validated successfully.")
		return nil
	},
}

func checkRoute(config core.Config, route core.Route, funcs template.FuncMap) error {
	templates, err := core.LoadTemplates(config.TemplatesDir, []string{route.Template}, funcs)
	if err != nil {
		return err
	}
	_, err = templates.Render(route.Template)
	return err
}
