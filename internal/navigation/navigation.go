// Package navigation decides which screens a storefront session may visit.
package navigation

import (
	"strings"

	"github.com/smartcart/smartcart-backend/pkg/enums"
)

const (
	PathShop      = "/shop"
	PathCart      = "/cart"
	PathRecipes   = "/recipes"
	PathDashboard = "/dashboard"
)

var shopperOnly = []string{PathShop, PathCart, PathRecipes}

// Redirect returns where a session in state should be sent instead of path.
// The second result is false when the path is allowed as is.
func Redirect(state enums.SessionState, path string) (string, bool) {
	switch state {
	case enums.SessionOwner:
		for _, prefix := range shopperOnly {
			if under(path, prefix) {
				return PathDashboard, true
			}
		}
	case enums.SessionShopper:
		if under(path, PathDashboard) {
			return PathShop, true
		}
	}
	return "", false
}

// Allowed reports whether role may use screens under path.
func Allowed(role enums.Role, path string) bool {
	_, redirect := Redirect(enums.SessionStateForRole(role), path)
	return !redirect
}

// under matches prefix itself and any sub-path, ignoring query and trailing slashes.
func under(path, prefix string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(strings.TrimSpace(path), "/")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
