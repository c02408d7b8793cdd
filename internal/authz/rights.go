// Package authz decides whether a (principal, route, verb) triple is
// allowed. It is a pure function of the injected permission tables and the
// role's grants; nothing here persists state between requests.
package authz

import "net/http"

// AccessRight is the ordered capability level of a grant.
type AccessRight int

// Capability levels, ordered.
const (
	AccessNone AccessRight = iota
	AccessReadOnly
	AccessReadWriteDelete
)

// ParseAccessRight maps the stored column value to an AccessRight. Unknown
// values collapse to none, keeping the check fail-closed.
func ParseAccessRight(s string) AccessRight {
	switch s {
	case "read_only":
		return AccessReadOnly
	case "read_write_delete":
		return AccessReadWriteDelete
	default:
		return AccessNone
	}
}

// allowsMethod reports whether the right covers the HTTP verb. GET and HEAD
// are the retrieval verbs; everything else mutates.
func (a AccessRight) allowsMethod(method string) bool {
	switch a {
	case AccessReadWriteDelete:
		return true
	case AccessReadOnly:
		return method == http.MethodGet || method == http.MethodHead
	default:
		return false
	}
}

// Grant is one role's access to a permission collection. Children is only
// populated for superadmin grants and names the granted sub-areas.
type Grant struct {
	Collection string
	Right      AccessRight
	Children   map[string]struct{}
}

// GrantSet indexes a role's grants by collection name.
type GrantSet map[string]Grant
