package controller

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

var errHostNotAllowed = errors.New("redirect to a host that is not allowed")

// ImageProxyController re-serves remote images with CORS enabled so the
// editing canvas can draw them without tainting. Only hosts on the allow
// list are fetched, redirects included.
type ImageProxyController struct {
	client *http.Client
	hosts  HostAllowlist
	logger *zap.Logger
}

// NewImageProxyController creates a new ImageProxyController. client may be
// nil. An empty allowedHosts rejects every URL.
func NewImageProxyController(client *http.Client, allowedHosts []string, logger *zap.Logger) *ImageProxyController {
	if client == nil {
		client = http.DefaultClient
	}
	hosts := NewHostAllowlist(allowedHosts...)
	guarded := *client
	next := client.CheckRedirect
	guarded.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if !hosts.Allows(req.URL.Hostname()) {
			return errHostNotAllowed
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}
	return &ImageProxyController{client: &guarded, hosts: hosts, logger: orNop(logger)}
}

// HostAllowlist matches hostnames case-insensitively. An entry starting
// with a dot matches any subdomain of it.
type HostAllowlist map[string]struct{}

// NewHostAllowlist builds an allowlist from hostnames or URLs. Blank and
// unparsable entries are skipped.
func NewHostAllowlist(entries ...string) HostAllowlist {
	hosts := HostAllowlist{}
	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "://") {
			entry = "//" + entry
		}
		u, err := url.Parse(entry)
		if err != nil || u.Hostname() == "" {
			continue
		}
		hosts[u.Hostname()] = struct{}{}
	}
	return hosts
}

// Allows reports whether host is listed directly or under a dotted suffix
func (h HostAllowlist) Allows(host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	if _, ok := h[host]; ok {
		return true
	}
	for entry := range h {
		if strings.HasPrefix(entry, ".") && strings.HasSuffix(host, entry) {
			return true
		}
	}
	return false
}

// Proxy handles GET /api/image?url=<absolute-url>
func (c *ImageProxyController) Proxy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeBadRequest(w, "Missing url param")
		return
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		writeBadRequest(w, "url must be an absolute http(s) URL")
		return
	}
	if !c.hosts.Allows(target.Hostname()) {
		c.logger.Warn("Image proxy host rejected", zap.String("host", target.Hostname()))
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "url host is not allowed"})
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		writeBadRequest(w, "Invalid url param")
		return
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Image proxy fetch failed", zap.String("url", raw), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Fetch failed"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		w.WriteHeader(resp.StatusCode)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	if cc := resp.Header.Get("Cache-Control"); cc != "" {
		w.Header().Set("Cache-Control", cc)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		c.logger.Warn("Image proxy copy interrupted", zap.String("url", raw), zap.Error(err))
	}
}
