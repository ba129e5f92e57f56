package truck

import "github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"

type CreatedEvent struct {
	Sender user.User
	Result *Truck
}

type UpdatedEvent struct {
	Sender user.User
	Before *Truck
	Result *Truck
}

type DeletedEvent struct {
	Sender user.User
	Result *Truck
}

// DriverAssignedEvent is published when a truck's driver changes.
// Truck.DriverID is nil when the driver was removed.
type DriverAssignedEvent struct {
	Sender   user.User
	Truck    *Truck
	Previous *Truck
}
