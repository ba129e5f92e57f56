package dispatch

import "github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"

type CreatedEvent struct {
	Sender user.User
	Result *Dispatch
}

type UpdatedEvent struct {
	Sender user.User
	Before *Dispatch
	Result *Dispatch
}

type AssignedEvent struct {
	Sender user.User
	Before *Dispatch
	Result *Dispatch
}

type StatusChangedEvent struct {
	Sender user.User
	From   Status
	Result *Dispatch
}

type DeletedEvent struct {
	Sender user.User
	Result *Dispatch
}
