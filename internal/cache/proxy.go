package cache

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const offlineMessage = "This content is not available offline"

// Proxy intercepts outbound GET requests and serves them cache-first from
// the current generation. Cache misses go to the network; 200 same-origin
// responses are stored opportunistically on the way back. When the network
// fails and nothing is cached, navigations get the precached application
// shell and everything else gets a synthetic 503.
type Proxy struct {
	store      *Store
	generation string
	shellURL   string
	origin     string
	transport  http.RoundTripper
	logger     *slog.Logger
}

// ProxyOption customizes a Proxy.
type ProxyOption func(*Proxy)

// WithProxyTransport sets the underlying transport for cache misses.
func WithProxyTransport(rt http.RoundTripper) ProxyOption {
	return func(p *Proxy) {
		p.transport = rt
	}
}

// WithProxyLogger sets the logger.
func WithProxyLogger(logger *slog.Logger) ProxyOption {
	return func(p *Proxy) {
		p.logger = logger
	}
}

// NewProxy creates a Proxy over the given store and generation. shellURL is
// the application shell document; its host defines the same-origin boundary
// for opportunistic caching.
func NewProxy(store *Store, generation, shellURL string, opts ...ProxyOption) *Proxy {
	p := &Proxy{
		store:      store,
		generation: generation,
		shellURL:   shellURL,
		transport:  http.DefaultTransport,
		logger:     slog.Default(),
	}
	if u, err := url.Parse(shellURL); err == nil {
		p.origin = u.Host
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ http.RoundTripper = (*Proxy)(nil)

// RoundTrip implements http.RoundTripper.
func (p *Proxy) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || !interceptedScheme(req.URL.Scheme) {
		return p.transport.RoundTrip(req)
	}

	requestURL := req.URL.String()
	entry, ok, err := p.store.Match(p.generation, req.Method, requestURL)
	if err != nil {
		p.logger.Warn("cache lookup failed, falling through to network", "url", requestURL, "error", err)
	}
	if ok {
		p.logger.Debug("serving from cache", "url", requestURL)
		return entry.response(req), nil
	}

	p.logger.Debug("fetching from network", "url", requestURL)
	resp, err := p.transport.RoundTrip(req)
	if err != nil {
		p.logger.Warn("network fetch failed", "url", requestURL, "error", err)
		return p.offlineFallback(req), nil
	}

	if resp.StatusCode == http.StatusOK && p.sameOrigin(req.URL) {
		return p.storeAndReplay(req, resp)
	}
	return resp, nil
}

// storeAndReplay persists a copy of the response and hands an equivalent
// response back to the caller.
func (p *Proxy) storeAndReplay(req *http.Request, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if err != nil || closeErr != nil {
		p.logger.Warn("reading response for caching failed", "url", req.URL.String(), "error", err)
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, nil
	}

	entry := Entry{
		URL:        req.URL.String(),
		Method:     req.Method,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
	if err := p.store.Put(p.generation, entry); err != nil {
		p.logger.Warn("caching response failed", "url", req.URL.String(), "error", err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// offlineFallback substitutes a cached shell for navigations and a synthetic
// 503 for everything else.
func (p *Proxy) offlineFallback(req *http.Request) *http.Response {
	if isNavigation(req) {
		shell, ok, err := p.store.Match(p.generation, http.MethodGet, p.shellURL)
		if err != nil {
			p.logger.Warn("shell lookup failed", "error", err)
		}
		if ok {
			return shell.response(req)
		}
	}

	body := []byte(`{"error":"Offline","message":"` + offlineMessage + `"}`)
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return &http.Response{
		Status:        http.StatusText(http.StatusServiceUnavailable),
		StatusCode:    http.StatusServiceUnavailable,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func (p *Proxy) sameOrigin(u *url.URL) bool {
	return p.origin != "" && u.Host == p.origin
}

func interceptedScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

// isNavigation reports whether the request loads a page document.
func isNavigation(req *http.Request) bool {
	if req.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

// response rebuilds an http.Response from the cached entry.
func (e *Entry) response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
