package cli

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

//go:embed _starter
var starterFS embed.FS

var InitCommand = &cli.Command{
	Name:  "init",
	Usage: "Create the homepage and health templates, static dir and config in the current directory",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "force",
			Usage: "overwrite files that already exist",
		},
	},
	Action: func(c *cli.Context) error {
		targetDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
		out := c.App.Writer
		fmt.Fprintln(out, "🚀 Creating site in:", targetDir)

		written, err := copyEmbeddedDir(starterFS, "_starter", targetDir, c.Bool("force"))
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		for _, path := range written {
			fmt.Fprintln(out, "  +", path)
		}

		fmt.Fprintln(out, "✅ Project created successfully.")
		fmt.Fprintln(out, "▶  Run: hello dev")
		return nil
	},
}

// copyEmbeddedDir copies sourceDir from source into targetDir and returns
// the relative paths it wrote. Existing files are kept unless overwrite is
// set.
func copyEmbeddedDir(source fs.FS, sourceDir string, targetDir string, overwrite bool) ([]string, error) {
	var written []string

	err := fs.WalkDir(source, sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		targetPath := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(targetPath, os.ModePerm)
		}

		if !overwrite {
			if _, err := os.Stat(targetPath); err == nil {
				return nil
			}
		}

		data, err := fs.ReadFile(source, path)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), os.ModePerm); err != nil {
			return err
		}

		if err := os.WriteFile(targetPath, data, 0644); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	})

	return written, err
}
