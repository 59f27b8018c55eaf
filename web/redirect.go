package web

import (
	"net/http"
	"strings"

	"smpverify/model"
)

var replitSuffixes = []string{".replit.app", ".repl.co", ".replit.dev"}

// redirectURI is the OAuth callback address registered with Discord. It must
// be identical on the authorize and token requests.
func redirectURI(cfg model.Web, r *http.Request) string {
	if cfg.PublicURL != "" {
		base := strings.TrimRight(cfg.PublicURL, "/")
		if !strings.Contains(base, "://") {
			base = "https://" + base
		}
		return base + "/callback"
	}
	if cfg.ReplitDomain != "" {
		return "https://" + cfg.ReplitDomain + "/callback"
	}

	return requestScheme(r) + "://" + r.Host + "/callback"
}

func requestScheme(r *http.Request) string {
	host := r.Host
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	for _, suffix := range replitSuffixes {
		if strings.HasSuffix(host, suffix) {
			return "https"
		}
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
