// Package gating computes content visibility for the storefront's gated
// regions. Pages mark gated subtrees with the niko-data attribute; the
// gateway answers with either directives for the on-page list filtering
// integration or a CSS fallback stylesheet.
package gating

import (
	"fmt"
	"strings"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
)

// AttributeName is the marker attribute the storefront puts on gated
// subtrees. Values contain one or more scopes.
const AttributeName = "niko-data"

// StyleElementID identifies the injected fallback style element. The page
// replaces the element wholesale on re-application, never appends.
const StyleElementID = "niko-content-gating-css"

// Scopes understood in niko-data values.
const (
	ScopeGuestOnly         = "guest-only"
	ScopeAuthenticatedOnly = "authenticated-only"
	ScopeCustomer          = "customer"
	ScopeRetailer          = "retailer"
)

// Rules lists which scopes a page should show and hide for a session. The
// two role scopes are never both shown: selecting one implies deselecting
// the other regardless of what the page showed before.
type Rules struct {
	Authenticated bool        `json:"authenticated"`
	Role          domain.Role `json:"role,omitempty"`
	Show          []string    `json:"show"`
	Hide          []string    `json:"hide"`
	BodyClasses   []string    `json:"body_classes"`
}

// Compute derives gating rules from a session snapshot.
func Compute(sess domain.Session) Rules {
	if !sess.Authenticated {
		return Rules{
			Authenticated: false,
			Show:          []string{ScopeGuestOnly},
			Hide:          []string{ScopeAuthenticatedOnly, ScopeCustomer, ScopeRetailer},
			BodyClasses:   []string{"niko-guest"},
		}
	}

	own := roleScope(sess.Role)
	other := roleScope(sess.Role.Other())
	return Rules{
		Authenticated: true,
		Role:          sess.Role,
		Show:          []string{ScopeAuthenticatedOnly, own},
		Hide:          []string{ScopeGuestOnly, other},
		BodyClasses:   []string{"niko-authenticated", "niko-" + own},
	}
}

// CSS renders the fallback stylesheet for a session. Output is a pure
// function of the rules, so re-applying for the same session replaces the
// style element with identical content.
func CSS(sess domain.Session) string {
	rules := Compute(sess)

	var b strings.Builder
	for _, scope := range rules.Hide {
		fmt.Fprintf(&b, "[%s*=\"%s\"] { display: none !important; }\n", AttributeName, scope)
	}
	for _, scope := range rules.Show {
		fmt.Fprintf(&b, "[%s*=\"%s\"] { display: initial !important; }\n", AttributeName, scope)
	}
	return b.String()
}

func roleScope(role domain.Role) string {
	return strings.ToLower(string(role))
}
