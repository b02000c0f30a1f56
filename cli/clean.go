package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-barry/hello/core"
	"github.com/urfave/cli/v2"
)

var CleanCommand = &cli.Command{
	Name:      "clean",
	Usage:     "Delete cached pages from the output directory (default: outputDir in hello.config.yml)",
	ArgsUsage: "[route (optional), e.g. /healthz]",
	Flags:     []cli.Flag{configFlag},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))
		out := c.App.Writer

		key := ""
		if c.Args().Len() > 0 {
			route, err := core.LookupRoute("/" + strings.Trim(c.Args().Get(0), "/"))
			if err != nil {
				return err
			}
			key = core.CacheKey(route.Path)
		}
		target := filepath.Join(config.OutputDir, key)

		info, err := os.Stat(target)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(out, "🧼 Nothing to clean:", target)
				return nil
			}
			return fmt.Errorf("failed to access path: %w", err)
		}

		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", target)
		}

		fmt.Fprintln(out, "🧹 Cleaning:", target)
		if err := core.PurgeCache(config, key); err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}

		fmt.Fprintln(out, "✅ Done.")
		return nil
	},
}
