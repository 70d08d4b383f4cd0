// package source resolves a logical book reference to an ordered list of
// candidate byte-sources and validates each by signature-sniffing before
// the reader commits to it.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/djsadd/elibrary/internal/session"
	"github.com/djsadd/elibrary/internal/shared"
)

// pdfMagic is the signature every accepted candidate must start with.
var pdfMagic = []byte("%PDF-")

// probeBytes is the size of the ranged probe request.
const probeBytes = 1024

// Provenance identifies where a candidate URL came from.
type Provenance string

const (
	ProvenanceExplicit   Provenance = "explicit-param"
	ProvenanceRemoteMeta Provenance = "remote-meta"
	ProvenanceStream     Provenance = "api-stream"
	ProvenanceDownload   Provenance = "api-download"
	ProvenanceFallback   Provenance = "bundled-fallback"
)

// Candidate is one possible byte-origin for a document. Recomputed every
// time the book reference changes; never persisted.
type Candidate struct {
	URL        string
	Provenance Provenance
	Local      bool // a filesystem path rather than a URL
}

// BookRef is the logical reference the caller wants opened.
type BookRef struct {
	BookID      string
	ExplicitURL string // caller-supplied source, highest priority
	RemoteURL   string // download_url from book metadata, may be relative
}

// Resolver produces and validates candidate sources.
type Resolver struct {
	apiBase      string
	httpClient   *http.Client
	session      *session.Store
	logger       *log.Logger
	fallbackPath string
}

// NewResolver creates a resolver. fallbackPath may be empty when no
// bundled document is configured.
func NewResolver(apiBase string, client *http.Client, sess *session.Store, logger *log.Logger, fallbackPath string) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{
		apiBase:      strings.TrimRight(apiBase, "/"),
		httpClient:   client,
		session:      sess,
		logger:       logger,
		fallbackPath: fallbackPath,
	}
}

// Logger returns the logger the resolver writes probe diagnostics to.
func (r *Resolver) Logger() *log.Logger {
	return r.logger
}

// SetLogger swaps the resolver's logger, used when the TUI owns the terminal.
func (r *Resolver) SetLogger(l *log.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Resolve returns candidates in strict priority order: explicit URL,
// non-private remote download URL, stream endpoint, download endpoint,
// bundled fallback. A remote URL pointing at a private or internal host
// is skipped so internal addresses never leak to the client transport.
func (r *Resolver) Resolve(ref BookRef) []Candidate {
	var candidates []Candidate

	if ref.ExplicitURL != "" {
		candidates = append(candidates, Candidate{URL: ref.ExplicitURL, Provenance: ProvenanceExplicit})
	}

	if ref.RemoteURL != "" {
		remote := ref.RemoteURL
		if strings.HasPrefix(remote, "/") {
			remote = r.apiBase + remote
		}
		if isPrivateHost(remote) {
			r.logger.Warnf("skipping private-host download url: %s", remote)
		} else {
			candidates = append(candidates, Candidate{URL: remote, Provenance: ProvenanceRemoteMeta})
		}
	}

	if ref.BookID != "" {
		id := url.PathEscape(ref.BookID)
		candidates = append(candidates,
			Candidate{URL: fmt.Sprintf("%s/api/catalog/books/%s/stream", r.apiBase, id), Provenance: ProvenanceStream},
			Candidate{URL: fmt.Sprintf("%s/api/catalog/books/%s/download", r.apiBase, id), Provenance: ProvenanceDownload},
		)
	}

	if r.fallbackPath != "" {
		candidates = append(candidates, Candidate{URL: r.fallbackPath, Provenance: ProvenanceFallback, Local: true})
	}

	return candidates
}

// Probe validates a candidate by fetching its first bytes and checking
// the document magic. Bounded by a range request so resolution latency
// stays flat regardless of document size.
func (r *Resolver) Probe(ctx context.Context, cand Candidate) error {
	if cand.Local {
		f, err := os.Open(cand.URL)
		if err != nil {
			return fmt.Errorf("failed to open fallback document: %w", err)
		}
		defer f.Close()

		head := make([]byte, len(pdfMagic))
		if _, err := io.ReadFull(f, head); err != nil {
			return fmt.Errorf("failed to read fallback document: %w", err)
		}
		if !bytes.HasPrefix(head, pdfMagic) {
			return fmt.Errorf("fallback document is not a PDF")
		}
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cand.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", probeBytes-1))
	r.attachBearer(req, cand)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}

	head := make([]byte, probeBytes)
	n, _ := io.ReadFull(resp.Body, head)
	head = head[:n]

	if !bytes.HasPrefix(head, pdfMagic) {
		sample := head
		if len(sample) > 64 {
			sample = sample[:64]
		}
		r.logger.Warnf("candidate %s (%s) is not a PDF, content starts with %q", cand.URL, cand.Provenance, sample)
		return fmt.Errorf("signature mismatch")
	}

	return nil
}

// Fetch materializes a candidate to a local file path the renderer can
// open. Remote candidates stream to a temporary file so the whole
// document never sits in memory.
func (r *Resolver) Fetch(ctx context.Context, cand Candidate) (string, error) {
	if cand.Local {
		return cand.URL, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cand.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create fetch request: %w", err)
	}
	r.attachBearer(req, cand)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "elib-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to download document: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to finalize temp file: %w", err)
	}

	return tmp.Name(), nil
}

// Locate walks candidates strictly in order: the first that both probes
// and opens wins. open receives a local file path and must return an
// error when the renderer cannot open it. Probing is sequential so the
// first success wins deterministically.
func (r *Resolver) Locate(ctx context.Context, ref BookRef, open func(path string, cand Candidate) error) (*Candidate, error) {
	candidates := r.Resolve(ref)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates for book reference", shared.ErrSourceUnavailable)
	}

	for _, cand := range candidates {
		if err := r.Probe(ctx, cand); err != nil {
			r.logger.Debugf("probe failed for %s (%s): %v", cand.URL, cand.Provenance, err)
			continue
		}

		path, err := r.Fetch(ctx, cand)
		if err != nil {
			r.logger.Debugf("fetch failed for %s (%s): %v", cand.URL, cand.Provenance, err)
			continue
		}

		if err := open(path, cand); err != nil {
			r.logger.Warnf("open failed for %s (%s): %v", cand.URL, cand.Provenance, err)
			if !cand.Local {
				os.Remove(path)
			}
			continue
		}

		return &cand, nil
	}

	return nil, shared.ErrSourceUnavailable
}

// attachBearer adds the Authorization header only when the candidate's
// origin matches the API base, so tokens are never sent cross-origin.
func (r *Resolver) attachBearer(req *http.Request, cand Candidate) {
	if r.session == nil || !sameOrigin(cand.URL, r.apiBase) {
		return
	}
	if token := r.session.Get().AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// sameOrigin reports whether two URLs share scheme and host.
func sameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return ua.Scheme == ub.Scheme && ua.Host == ub.Host
}

// isPrivateHost reports whether a URL points at a loopback, private, or
// otherwise internal address.
func isPrivateHost(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}

	host := u.Hostname()
	if host == "" {
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
	}

	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".local") || strings.HasSuffix(lower, ".internal") {
		return true
	}
	return !strings.Contains(lower, ".")
}
