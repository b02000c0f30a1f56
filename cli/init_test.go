package cli

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

func TestCopyEmbeddedDir(t *testing.T) {
	tmpDir := t.TempDir()

	written, err := copyEmbeddedDir(starterFS, "_starter", tmpDir, false)
	if err != nil {
		t.Fatalf("unexpected error copying embedded dir: %v", err)
	}
	if len(written) == 0 {
		t.Fatal("expected files to be written")
	}

	err = fs.WalkDir(starterFS, "_starter", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel("_starter", path)
		if err != nil {
			return err
		}
		if _, err := os.Stat(filepath.Join(tmpDir, rel)); err != nil {
			t.Errorf("expected file %s to exist, but got error: %v", rel, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected walk error: %v", err)
	}
}

func TestCopyEmbeddedDir_KeepsExistingUnlessOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "templates", "index.html")
	_ = os.MkdirAll(filepath.Dir(existing), 0755)
	_ = os.WriteFile(existing, []byte("mine"), 0644)

	if _, err := copyEmbeddedDir(starterFS, "_starter", tmpDir, false); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(existing); string(data) != "mine" {
		t.Errorf("expected existing file to be kept, got %q", data)
	}

	if _, err := copyEmbeddedDir(starterFS, "_starter", tmpDir, true); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(existing); string(data) == "mine" {
		t.Error("expected existing file to be overwritten with --force")
	}
}

func TestInitCommand_RunSuccess(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	var out bytes.Buffer
	app := &cli.App{
		Writer:   &out,
		Commands: []*cli.Command{InitCommand},
	}

	if err := app.Run([]string{"hello", "init"}); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	expectedFiles := []string{
		"hello.config.yml",
		filepath.Join("templates", "index.html"),
		filepath.Join("templates", "health.html"),
		filepath.Join("static", "style.css"),
	}

	for _, f := range expectedFiles {
		if _, err := os.Stat(filepath.Join(tmpDir, f)); err != nil {
			t.Errorf("expected file %s to exist, but got error: %v", f, err)
		}
	}

	if !bytes.Contains(out.Bytes(), []byte("Project created successfully")) {
		t.Errorf("unexpected output: %s", out.String())
	}
}
