package middleware

import (
	"crypto/subtle"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/pkg/configuration"
)

type opsGuard struct {
	env   string
	opts  configuration.OpsGuardOptions
	ipHdr string
	paths []string
	cidrs []netip.Prefix
}

// OpsGuard hides the given operational path prefixes in production unless
// the caller matches an allowed CIDR, the ops token or the basic auth pair.
// Hidden paths answer 404.
func OpsGuard(conf *configuration.Configuration, paths ...string) mux.MiddlewareFunc {
	if conf == nil {
		conf = configuration.Use()
	}
	g := &opsGuard{
		env:   conf.GoAppEnvironment,
		opts:  conf.OpsGuard,
		ipHdr: conf.RealIPHeader,
		paths: paths,
		cidrs: parseCIDRs(conf.OpsGuard.CIDRs),
	}
	return g.middleware
}

func (g *opsGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.env != configuration.Production || !g.opts.Enabled || !g.isOpsPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if g.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}

		http.NotFound(w, r)
	})
}

func (g *opsGuard) isOpsPath(path string) bool {
	for _, p := range g.paths {
		if p != "" && (path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/")) {
			return true
		}
	}
	return false
}

func (g *opsGuard) authorized(r *http.Request) bool {
	if len(g.cidrs) > 0 {
		addr, err := netip.ParseAddr(getRealIP(r, g.ipHdr))
		if err == nil {
			for _, p := range g.cidrs {
				if p.Contains(addr) {
					return true
				}
			}
		}
	}

	if token := strings.TrimSpace(g.opts.Token); token != "" {
		if subtle.ConstantTimeCompare([]byte(opsTokenFromRequest(r)), []byte(token)) == 1 {
			return true
		}
	}

	if strings.TrimSpace(g.opts.BasicAuthUser) != "" || strings.TrimSpace(g.opts.BasicAuthPass) != "" {
		u, p, ok := r.BasicAuth()
		if ok &&
			subtle.ConstantTimeCompare([]byte(u), []byte(g.opts.BasicAuthUser)) == 1 &&
			subtle.ConstantTimeCompare([]byte(p), []byte(g.opts.BasicAuthPass)) == 1 {
			return true
		}
	}

	return false
}

func parseCIDRs(raw string) []netip.Prefix {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' })
	out := make([]netip.Prefix, 0, len(parts))
	for _, part := range parts {
		if p, err := netip.ParsePrefix(part); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func opsTokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get("X-Ops-Token")); t != "" {
		return t
	}
	return bearerToken(r)
}
