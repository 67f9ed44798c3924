package video

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/logging"
)

// ErrNoVideo reports that none of a document's video references could be
// opened. Callers keep editing without playback.
var ErrNoVideo = errors.New("no playable video")

// DefaultFormats lists the extensions accepted when none are configured.
var DefaultFormats = []string{"mp4"}

// MediaProber reads media information from a file.
type MediaProber interface {
	Probe(ctx context.Context, path string) (*Info, error)
}

// Source is an opened video reference.
type Source struct {
	Ref  string
	Path string
	Info *Info
}

// Resolver picks the first usable video reference of a document.
type Resolver struct {
	prober  MediaProber
	formats map[string]bool
	logger  *logging.Logger
}

// NewResolver returns a resolver accepting the given file extensions.
func NewResolver(prober MediaProber, formats []string, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Nop()
	}
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	accepted := make(map[string]bool, len(formats))
	for _, f := range formats {
		accepted[strings.TrimPrefix(strings.ToLower(f), ".")] = true
	}
	return &Resolver{prober: prober, formats: accepted, logger: logger}
}

// Accepts reports whether path has one of the configured extensions.
func (r *Resolver) Accepts(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return r.formats[ext]
}

type candidate struct {
	ref  string
	path string
}

// Candidates maps the document's video references to file paths, in order.
// Relative references resolve against the document's directory.
func (r *Resolver) Candidates(doc *document.Document) []string {
	cands := r.candidates(doc)
	paths := make([]string, len(cands))
	for i, c := range cands {
		paths[i] = c.path
	}
	return paths
}

func (r *Resolver) candidates(doc *document.Document) []candidate {
	if doc == nil {
		return nil
	}
	base := ""
	if p := doc.Pathname(); p != "" {
		base = filepath.Dir(p)
	}

	var out []candidate
	for _, ref := range doc.Video() {
		path := refPath(ref)
		if path == "" {
			continue
		}
		if !filepath.IsAbs(path) && base != "" {
			path = filepath.Join(base, path)
		}
		out = append(out, candidate{ref: ref, path: path})
	}
	return out
}

// Resolve probes each candidate in order and returns the first that opens.
func (r *Resolver) Resolve(ctx context.Context, doc *document.Document) (*Source, error) {
	for _, c := range r.candidates(doc) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.Accepts(c.path) {
			r.logger.Debugw("Skipping video with unsupported format", "path", c.path)
			continue
		}
		info, err := r.prober.Probe(ctx, c.path)
		if err != nil {
			r.logger.Debugw("Video candidate failed", "path", c.path, "error", err)
			continue
		}
		return &Source{Ref: c.ref, Path: c.path, Info: info}, nil
	}
	return nil, ErrNoVideo
}

// refPath turns a stored reference, plain path or file URI, into a path.
func refPath(ref string) string {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "file:") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.Path != "" {
		return filepath.FromSlash(u.Path)
	}
	return filepath.FromSlash(u.Opaque)
}
