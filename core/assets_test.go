package core

import (
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testAssetContext(t *testing.T, env string) AssetContext {
	t.Helper()
	return AssetContext{
		Env:       env,
		StaticDir: t.TempDir(),
		CacheDir:  t.TempDir(),
	}
}

func TestMinifyAsset_NonProdReturnsSamePath(t *testing.T) {
	path := "/static/style.css"
	result := MinifyAsset(testAssetContext(t, "dev"), path)
	if result != path {
		t.Errorf("expected same path in dev mode, got %s", result)
	}
}

func TestMinifyAsset_ProdMinifiesAndCaches(t *testing.T) {
	ctx := testAssetContext(t, "prod")
	writeTempFile(t, ctx.StaticDir, "example.css", "body {   color: red; }")

	result := MinifyAsset(ctx, "/static/example.css")

	if !strings.HasPrefix(result, "/static/example.min.css?v=") {
		t.Errorf("unexpected minified path: %s", result)
	}

	minifiedFile := filepath.Join(ctx.CacheDir, "static", "example.min.css")
	data, err := os.ReadFile(minifiedFile)
	if err != nil {
		t.Fatalf("expected minified file to exist: %s", minifiedFile)
	}
	if strings.Contains(string(data), "   ") {
		t.Errorf("expected whitespace to be removed, got %q", data)
	}

	if _, err := os.Stat(minifiedFile + ".gz"); err != nil {
		t.Errorf("expected gzipped file to exist: %s.gz", minifiedFile)
	}
}

func TestMinifyAsset_MissingSourceReturnsOriginal(t *testing.T) {
	result := MinifyAsset(testAssetContext(t, "prod"), "/static/missing.js")
	if result != "/static/missing.js" {
		t.Errorf("expected original path for missing source, got %s", result)
	}
}

func TestMinifyAsset_UnsupportedExtensionReturnsOriginal(t *testing.T) {
	result := MinifyAsset(testAssetContext(t, "prod"), "/static/image.png")
	if result != "/static/image.png" {
		t.Errorf("expected original path for unsupported extension, got %s", result)
	}
}

func TestMinifyAsset_AlreadyMinifiedReturnsOriginal(t *testing.T) {
	result := MinifyAsset(testAssetContext(t, "prod"), "/static/app.min.js")
	if result != "/static/app.min.js" {
		t.Errorf("expected original path for .min.js, got %s", result)
	}
}

func TestTemplateFuncs_safeHTML(t *testing.T) {
	safe := TemplateFuncs(testAssetContext(t, "dev"))["safeHTML"].(func(interface{}) template.HTML)

	if safe("<b>test</b>") != template.HTML("<b>test</b>") {
		t.Error("string input failed")
	}

	if safe(template.HTML("<i>safe</i>")) != template.HTML("<i>safe</i>") {
		t.Error("template.HTML input failed")
	}

	if safe(123) != template.HTML("") {
		t.Error("unexpected non-string should return empty")
	}
}

func TestTemplateFuncs_versioned(t *testing.T) {
	ctx := testAssetContext(t, "prod")
	writeTempFile(t, ctx.StaticDir, "script.js", "console.log('hello')")

	versioned := TemplateFuncs(ctx)["versioned"].(func(string) string)
	result := versioned("/static/script.js")

	if !strings.HasPrefix(result, "/static/script.js?v=") {
		t.Errorf("unexpected versioned path: %s", result)
	}
}

func TestTemplateFuncs_versionedFallback(t *testing.T) {
	versioned := TemplateFuncs(testAssetContext(t, "prod"))["versioned"].(func(string) string)

	input := "/static/missing.js"
	if result := versioned(input); result != input {
		t.Errorf("expected fallback to original path, got %s", result)
	}

	if result := versioned("/img/logo.png"); result != "/img/logo.png" {
		t.Errorf("expected non-static path untouched, got %s", result)
	}
}

func TestTemplateFuncs_IncludesSprig(t *testing.T) {
	funcs := TemplateFuncs(testAssetContext(t, "dev"))
	for _, name := range []string{"dict", "upper", "default"} {
		if _, ok := funcs[name]; !ok {
			t.Errorf("expected sprig func %q in func map", name)
		}
	}
}
