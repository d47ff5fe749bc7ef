package archive

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrDocumentUnavailable marks missing or unreadable source documents.
// Callers skip the affected fixture or season and keep the run going.
var ErrDocumentUnavailable = errors.New("document unavailable")

var (
	seasonDirPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	charsetPattern   = regexp.MustCompile(`(?i)charset\s*=\s*["']?([a-z0-9_-]+)`)
	refreshPattern   = regexp.MustCompile(`(?i)url\s*=\s*(\S+)`)
)

// Document is one decoded archive page.
type Document struct {
	// Path is the archive-relative path of the document that actually held
	// the content, after any redirect hop.
	Path string
	Doc  *goquery.Document
}

// Loader reads and decodes documents below one archive root. The archive
// mixes UTF-8 with legacy single-byte encodings, and older pages wrap the
// real content behind framesets or meta refreshes.
type Loader struct {
	root        string
	readTimeout time.Duration
}

func NewLoader(root string, readTimeout time.Duration) *Loader {
	return &Loader{root: root, readTimeout: readTimeout}
}

// SeasonDirs lists season directories (YYYY-YY) in label order. A non-empty
// filter restricts the result to the given labels.
func (l *Loader) SeasonDirs(filter []string) ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, errors.Wrapf(ErrDocumentUnavailable, "read archive root %s: %v", l.root, err)
	}

	allowed := make(map[string]struct{}, len(filter))
	for _, label := range filter {
		allowed[strings.TrimSpace(label)] = struct{}{}
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || !seasonDirPattern.MatchString(entry.Name()) {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[entry.Name()]; !ok {
				continue
			}
		}
		dirs = append(dirs, entry.Name())
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Glob lists archive-relative paths matching the pattern, sorted.
func (l *Loader) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, errors.Wrapf(err, "glob %s", pattern)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(l.root, m)
		if err != nil {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out, nil
}

// Load reads one document, decoding its charset and following at most two
// redirect hops (frameset frame or meta refresh).
func (l *Loader) Load(ctx context.Context, relPath string) (*Document, error) {
	current := path.Clean(relPath)
	for hop := 0; hop < 3; hop++ {
		doc, err := l.loadOne(ctx, current)
		if err != nil {
			return nil, err
		}
		target := redirectTarget(doc)
		if target == "" {
			return &Document{Path: current, Doc: doc}, nil
		}
		current = resolveRelative(current, target)
	}
	return nil, errors.Wrapf(ErrDocumentUnavailable, "redirect loop at %s", relPath)
}

func (l *Loader) loadOne(ctx context.Context, relPath string) (*goquery.Document, error) {
	raw, err := l.readFile(ctx, relPath)
	if err != nil {
		return nil, err
	}
	decoded := decode(raw)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, errors.Wrapf(ErrDocumentUnavailable, "parse %s: %v", relPath, err)
	}
	return doc, nil
}

// readFile applies the per-document read timeout. Plain file reads do not
// honor context cancellation, so the read runs on its own goroutine.
func (l *Loader) readFile(ctx context.Context, relPath string) ([]byte, error) {
	if l.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.readTimeout)
		defer cancel()
	}

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(relPath)))
		ch <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Wrapf(ErrDocumentUnavailable, "read %s: %v", relPath, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return nil, errors.Wrapf(ErrDocumentUnavailable, "read %s: %v", relPath, res.err)
		}
		if len(res.data) == 0 {
			return nil, errors.Wrapf(ErrDocumentUnavailable, "empty document %s", relPath)
		}
		return res.data, nil
	}
}

// decode sniffs the charset from the document head and converts to UTF-8.
// Pages without a charset declaration that are not valid UTF-8 get the
// Windows-1252 treatment, which covers the archive's oldest exports.
func decode(raw []byte) []byte {
	head := raw
	if len(head) > 2048 {
		head = head[:2048]
	}
	if m := charsetPattern.FindSubmatch(head); m != nil {
		name := strings.ToLower(string(m[1]))
		if name != "utf-8" && name != "utf8" {
			if enc, err := htmlindex.Get(name); err == nil && enc != nil {
				if out, err := enc.NewDecoder().Bytes(raw); err == nil {
					return out
				}
			}
		}
		return raw
	}
	if utf8.Valid(raw) {
		return raw
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return out
}

// redirectTarget returns the wrapped document path for frameset and meta
// refresh wrapper pages, or "" for real content pages.
func redirectTarget(doc *goquery.Document) string {
	if src, ok := doc.Find("frameset frame").First().Attr("src"); ok {
		// multi-frame pages carry navigation in the first frame and
		// content in the largest; prefer a frame named "main" if present.
		if main, found := doc.Find(`frameset frame[name="main"]`).First().Attr("src"); found {
			return strings.TrimSpace(main)
		}
		return strings.TrimSpace(src)
	}
	if content, ok := doc.Find(`meta[http-equiv="refresh" i]`).First().Attr("content"); ok {
		if m := refreshPattern.FindStringSubmatch(content); m != nil {
			return strings.Trim(m[1], `"'`)
		}
	}
	return ""
}

func resolveRelative(from, target string) string {
	if path.IsAbs(target) {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join(path.Dir(from), target))
}
