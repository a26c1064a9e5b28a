package domain

// ResourceLocator names a place where resource ownership can be checked.
// The set is closed: each variant maps to exactly one statically known query
// in the repo layer, so no table or column name is ever interpolated from
// request data. One ownership gate serves every owned resource type by being
// parameterized with one of these variants.
type ResourceLocator int

const (
	// LocatorSelf has no backing table: the resource id in the URL is itself
	// a user id, and ownership means "this is my own account".
	LocatorSelf ResourceLocator = iota
	// LocatorBarbershop resolves barbershops.owner_id.
	LocatorBarbershop
	// LocatorAppointment resolves appointments.client_id.
	LocatorAppointment
	// LocatorReview resolves reviews.client_id.
	LocatorReview
)

// String returns the locator name for logs and error wrapping.
func (l ResourceLocator) String() string {
	switch l {
	case LocatorSelf:
		return "self"
	case LocatorBarbershop:
		return "barbershop"
	case LocatorAppointment:
		return "appointment"
	case LocatorReview:
		return "review"
	default:
		return "unknown"
	}
}
