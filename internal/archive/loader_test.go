package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestSeasonDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"1965-66", "1948-49", "2001-02", "bilder", "spieler"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	writeFile(t, root, "index.htm", []byte("<html></html>"))

	l := NewLoader(root, time.Second)
	dirs, err := l.SeasonDirs(nil)
	if err != nil {
		t.Fatalf("SeasonDirs: %v", err)
	}
	want := []string{"1948-49", "1965-66", "2001-02"}
	if len(dirs) != len(want) {
		t.Fatalf("dirs = %v", dirs)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Fatalf("dirs = %v, want %v", dirs, want)
		}
	}

	filtered, err := l.SeasonDirs([]string{"1965-66", " 2001-02 "})
	if err != nil {
		t.Fatalf("SeasonDirs filtered: %v", err)
	}
	if len(filtered) != 2 || filtered[0] != "1965-66" || filtered[1] != "2001-02" {
		t.Fatalf("filtered = %v", filtered)
	}
}

func TestGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "1965-66/spielplan.htm", []byte("<html></html>"))
	writeFile(t, root, "1965-66/spiel01.htm", []byte("<html></html>"))
	writeFile(t, root, "1965-66/tab05.html", []byte("<html></html>"))

	l := NewLoader(root, time.Second)
	paths, err := l.Glob("1965-66/tab*.htm*")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(paths) != 1 || paths[0] != "1965-66/tab05.html" {
		t.Fatalf("paths = %v", paths)
	}
}

func TestLoad_DecodesDeclaredCharset(t *testing.T) {
	root := t.TempDir()
	// "Müller" in ISO-8859-1 bytes with a matching declaration
	body := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1"></head><body><p>M` + "\xfc" + `ller</p></body></html>`
	writeFile(t, root, "page.htm", []byte(body))

	l := NewLoader(root, time.Second)
	doc, err := l.Load(context.Background(), "page.htm")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := doc.Doc.Find("p").Text(); got != "Müller" {
		t.Fatalf("decoded text = %q", got)
	}
}

func TestLoad_SniffsWindows1252WithoutDeclaration(t *testing.T) {
	root := t.TempDir()
	raw, err := charmap.Windows1252.NewEncoder().Bytes([]byte("<html><body><p>Größe</p></body></html>"))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	writeFile(t, root, "alt.htm", raw)

	l := NewLoader(root, time.Second)
	doc, err := l.Load(context.Background(), "alt.htm")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := doc.Doc.Find("p").Text(); got != "Größe" {
		t.Fatalf("decoded text = %q", got)
	}
}

func TestLoad_FollowsFramesetMainFrame(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "1965-66/spielplan.htm", []byte(`<html><frameset cols="20%,80%">
<frame name="nav" src="nav.htm"><frame name="main" src="inhalt.htm">
</frameset></html>`))
	writeFile(t, root, "1965-66/inhalt.htm", []byte(`<html><body><h1>Bezirksliga</h1></body></html>`))

	l := NewLoader(root, time.Second)
	doc, err := l.Load(context.Background(), "1965-66/spielplan.htm")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Path != "1965-66/inhalt.htm" {
		t.Fatalf("path after redirect = %q", doc.Path)
	}
	if got := doc.Doc.Find("h1").Text(); got != "Bezirksliga" {
		t.Fatalf("content = %q", got)
	}
}

func TestLoad_FollowsMetaRefresh(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "alt.htm", []byte(`<html><head>
<meta http-equiv="refresh" content="0; url=neu.htm"></head><body></body></html>`))
	writeFile(t, root, "neu.htm", []byte(`<html><body><p>neu</p></body></html>`))

	l := NewLoader(root, time.Second)
	doc, err := l.Load(context.Background(), "alt.htm")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Path != "neu.htm" || doc.Doc.Find("p").Text() != "neu" {
		t.Fatalf("doc = %q %q", doc.Path, doc.Doc.Find("p").Text())
	}
}

func TestLoad_RedirectLoop(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.htm", []byte(`<html><head><meta http-equiv="refresh" content="0; url=b.htm"></head></html>`))
	writeFile(t, root, "b.htm", []byte(`<html><head><meta http-equiv="refresh" content="0; url=a.htm"></head></html>`))

	l := NewLoader(root, time.Second)
	if _, err := l.Load(context.Background(), "a.htm"); !errors.Is(err, ErrDocumentUnavailable) {
		t.Fatalf("want ErrDocumentUnavailable, got %v", err)
	}
}

func TestLoad_MissingAndEmptyFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "leer.htm", nil)

	l := NewLoader(root, time.Second)
	if _, err := l.Load(context.Background(), "fehlt.htm"); !errors.Is(err, ErrDocumentUnavailable) {
		t.Fatalf("missing file: want ErrDocumentUnavailable, got %v", err)
	}
	if _, err := l.Load(context.Background(), "leer.htm"); !errors.Is(err, ErrDocumentUnavailable) {
		t.Fatalf("empty file: want ErrDocumentUnavailable, got %v", err)
	}
}
