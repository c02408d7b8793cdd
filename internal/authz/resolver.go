package authz

import (
	"fmt"
	"strings"

	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Resolver evaluates route permissions against the injected tables.
type Resolver struct {
	tables Tables
}

// NewResolver constructs a Resolver over the given tables.
func NewResolver(tables Tables) *Resolver {
	return &Resolver{tables: tables}
}

// AuthorizeAdmin decides an admin-panel request. path is relative to the
// panel prefix. A segment that maps to no collection is denied, never an
// internal error.
func (r *Resolver) AuthorizeAdmin(grants GrantSet, path, method string) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		return fmt.Errorf("authz: unroutable path: %w", httpx.ErrForbidden)
	}
	controller := segs[0]
	if controller == r.tables.AdminSubrouteMarker && len(segs) > 1 {
		controller = segs[1]
	}

	var name string
	for _, col := range r.tables.Admin {
		for _, seg := range col.Segments {
			if seg == controller {
				name = col.Name
				break
			}
		}
		if name != "" {
			break
		}
	}
	if name == "" {
		return fmt.Errorf("authz: segment %q in no collection: %w", controller, httpx.ErrForbidden)
	}

	grant, ok := grants[name]
	if !ok || grant.Right == AccessNone {
		return fmt.Errorf("authz: no grant for %q: %w", name, httpx.ErrForbidden)
	}
	if !grant.Right.allowsMethod(method) {
		return fmt.Errorf("authz: %s not allowed on read-only %q: %w", method, name, httpx.ErrForbidden)
	}
	return nil
}

// AuthorizeSuperAdmin decides a superadmin-panel request. The first path
// segment is the candidate permission area; segments outside the permissioned
// areas (dashboard widgets and the like) pass unconditionally.
func (r *Resolver) AuthorizeSuperAdmin(grants GrantSet, path, method string) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		return fmt.Errorf("authz: unroutable path: %w", httpx.ErrForbidden)
	}
	name := segs[0]
	area, recognized := r.tables.SuperAdmin[name]
	if !recognized {
		return nil
	}

	grant, ok := grants[name]
	if !ok || grant.Right == AccessNone {
		return fmt.Errorf("authz: no grant for %q: %w", name, httpx.ErrForbidden)
	}

	if len(segs) > 1 {
		if err := checkChild(area, grant, name, segs[1]); err != nil {
			return err
		}
	}
	// The sub-child level re-checks the second segment, not the third. This
	// matches the long-standing production behavior; do not change it without
	// product sign-off. TestSubChildRechecksSecondSegment pins it.
	if len(segs) > 2 {
		if err := checkChild(area, grant, name, segs[1]); err != nil {
			return err
		}
	}

	if !grant.Right.allowsMethod(method) {
		return fmt.Errorf("authz: %s not allowed on read-only %q: %w", method, name, httpx.ErrForbidden)
	}
	return nil
}

func checkChild(area Area, grant Grant, name, child string) error {
	if _, configured := area.Children[child]; !configured {
		return nil
	}
	if _, granted := grant.Children[child]; !granted {
		return fmt.Errorf("authz: child %q of %q not granted: %w", child, name, httpx.ErrForbidden)
	}
	return nil
}

func splitPath(path string) []string {
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}
