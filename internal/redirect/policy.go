// Package redirect decides where an authenticated user lands after a
// transition and, just as importantly, when not to navigate at all. Every
// function is pure; loop prevention is structural rather than handled at
// runtime.
package redirect

import (
	"strings"

	"github.com/nikobathrooms/niko-auth-gateway/internal/config"
	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
)

// Policy computes dashboard targets from the two-role table and the known
// storefront hosts.
type Policy struct {
	routes  config.RouteConfig
	webflow config.WebflowConfig
}

// NewPolicy builds a policy from configuration.
func NewPolicy(routes config.RouteConfig, webflow config.WebflowConfig) *Policy {
	return &Policy{routes: routes, webflow: webflow}
}

// TargetPath maps a role to its dashboard path.
func (p *Policy) TargetPath(role domain.Role) string {
	if role == domain.RoleRetailer {
		return p.routes.RetailerDashboard
	}
	return p.routes.CustomerDashboard
}

// BaseURL selects the origin for a hostname by exact match against the
// production and staging hosts, falling back to the request's own origin.
func (p *Policy) BaseURL(hostname, currentOrigin string) string {
	switch hostname {
	case p.webflow.ProductionHost:
		return p.webflow.ProductionOrigin
	case p.webflow.StagingHost:
		return p.webflow.StagingOrigin
	default:
		return currentOrigin
	}
}

// ShouldRedirect reports whether an auth-state recomputation on
// currentPath warrants navigating to targetPath. Already being on the
// target means no. Being anywhere inside the auth namespace also means no:
// auth pages manage their own navigation after an explicit submit, and
// redirecting out from under them is how loops start.
func (p *Policy) ShouldRedirect(currentPath, targetPath string) bool {
	if targetPath == "" {
		return false
	}
	if normalizePath(currentPath) == normalizePath(targetPath) {
		return false
	}
	if p.inAuthNamespace(currentPath) {
		return false
	}
	return true
}

// ShouldRedirectAfterSubmit reports whether an explicit form submit from
// currentPath warrants navigating to targetPath. Submits come from auth
// pages, so only already being on the target suppresses the redirect; the
// auth-namespace skip does not apply here.
func (p *Policy) ShouldRedirectAfterSubmit(currentPath, targetPath string) bool {
	if targetPath == "" {
		return false
	}
	return normalizePath(currentPath) != normalizePath(targetPath)
}

// LoginPath returns the storefront login page path.
func (p *Policy) LoginPath() string {
	return p.routes.Login
}

// TargetURL combines base origin and role target into a full redirect URL.
func (p *Policy) TargetURL(role domain.Role, hostname, currentOrigin string) string {
	return p.BaseURL(hostname, currentOrigin) + p.TargetPath(role)
}

func (p *Policy) inAuthNamespace(path string) bool {
	normalized := normalizePath(path)
	// configured auth pages are skipped even when their paths carry none of
	// the generic segments below
	if normalized == normalizePath(p.routes.Login) || normalized == normalizePath(p.routes.Signup) {
		return true
	}
	for _, segment := range []string{"/auth/", "log-in", "login", "sign-up", "signup"} {
		if strings.Contains(normalized, segment) {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	path = strings.ToLower(path)
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
