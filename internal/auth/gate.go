package auth

import "strings"

// Admin paths the gate knows about.
const (
	AdminHome  = "/admin"
	AdminLogin = "/admin/login"
)

// Decision is the outcome of Gate.
type Decision int

const (
	// Allow lets the request through.
	Allow Decision = iota
	// RedirectLogin sends an anonymous caller to the login page.
	RedirectLogin
	// RedirectAdminHome sends an authenticated caller away from the login page.
	RedirectAdminHome
)

// Location is the redirect target for a decision, or "" for Allow.
func (d Decision) Location() string {
	switch d {
	case RedirectLogin:
		return AdminLogin
	case RedirectAdminHome:
		return AdminHome
	}
	return ""
}

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectAdminHome:
		return "redirect-admin-home"
	}
	return "unknown"
}

// Gate decides whether a request for path may proceed. Only /admin and
// paths under /admin/ are guarded; the login page is reachable only while
// anonymous.
func Gate(path string, authenticated bool) Decision {
	if path == AdminLogin || path == AdminLogin+"/" {
		if authenticated {
			return RedirectAdminHome
		}
		return Allow
	}
	if path == AdminHome || strings.HasPrefix(path, AdminHome+"/") {
		if !authenticated {
			return RedirectLogin
		}
	}
	return Allow
}
