package contragent

import "github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"

type CreatedEvent struct {
	Sender user.User
	Result *Contragent
}

type UpdatedEvent struct {
	Sender user.User
	Before *Contragent
	Result *Contragent
}

type DeletedEvent struct {
	Sender user.User
	Result *Contragent
}
