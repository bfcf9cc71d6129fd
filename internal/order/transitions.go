package order

type edge struct {
	from OrderStatus
	to   OrderStatus
}

// transitions is the single authority over the order lifecycle: which edge may
// be taken, and by which role. Every status write in the system goes through
// this table; there are no per-caller status conditionals anywhere else.
var transitions = map[edge][]Role{
	{StatusPending, StatusPlaced}:   {RoleSystem},
	{StatusPlaced, StatusConfirmed}: {RoleRestaurant},
	{StatusConfirmed, StatusReady}:  {RoleRestaurant},
	{StatusReady, StatusPicked}:     {RoleDriver},
	{StatusPicked, StatusDelivered}: {RoleDriver},

	// Cancellation is reachable from every non-terminal state.
	{StatusPending, StatusCancelled}:   {RoleRestaurant},
	{StatusPlaced, StatusCancelled}:    {RoleRestaurant},
	{StatusConfirmed, StatusCancelled}: {RoleRestaurant},
	{StatusReady, StatusCancelled}:     {RoleRestaurant},
	{StatusPicked, StatusCancelled}:    {RoleRestaurant},
}

// CanTransition reports whether role may drive the from -> to edge.
func CanTransition(from, to OrderStatus, role Role) bool {
	for _, r := range transitions[edge{from, to}] {
		if r == role {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no edge leaves the given status.
func IsTerminal(s OrderStatus) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusPlaced, StatusConfirmed, StatusReady,
		StatusPicked, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}
