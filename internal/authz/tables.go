package authz

// Collection maps a top-level admin permission name to the route segments it
// covers. Order matters: the resolver takes the first collection whose
// segment set contains the requested controller segment.
type Collection struct {
	Name     string
	Segments []string
}

// Area is a superadmin permission area with its recognized sub-areas.
type Area struct {
	Children map[string]struct{}
}

// Tables is the static permission configuration for both panels. It is an
// explicit value injected into the Resolver at startup so tests can swap in
// alternate tables; it is never mutated after construction.
type Tables struct {
	Admin []Collection
	// AdminSubrouteMarker is the shared route prefix whose own segment
	// carries no permission meaning; when a path starts with it the next
	// segment names the controller instead.
	AdminSubrouteMarker string
	SuperAdmin          map[string]Area
}

func children(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// DefaultTables returns the deploy-time permission tables.
//
// The segment lists are maintained by hand and must match the segments the
// router actually mounts; TestAdminTableCoversMountedSegments pins that.
func DefaultTables() Tables {
	return Tables{
		Admin: []Collection{
			{Name: "dashboard", Segments: []string{"dashboard", "stats"}},
			{Name: "residents", Segments: []string{"residents", "flats"}},
			{Name: "security", Segments: []string{"guests", "vehicles", "alerts", "guards"}},
			{Name: "documents", Segments: []string{"documents", "notices"}},
			{Name: "notifications", Segments: []string{"devices", "notifications"}},
			{Name: "settings", Segments: []string{"roles", "settings", "profile"}},
		},
		AdminSubrouteMarker: "gate",
		SuperAdmin: map[string]Area{
			"apartments": {Children: children("admins", "flats", "subscription")},
			"clients":    {Children: children("profile", "subscription", "devices")},
			"plans":      {Children: children()},
			"cms":        {Children: children("pages", "media")},
			"guards":     {Children: children("profile")},
		},
	}
}
