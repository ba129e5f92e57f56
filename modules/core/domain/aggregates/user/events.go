package user

type CreatedEvent struct {
	Sender User
	Result User
}

type UpdatedEvent struct {
	Sender User
	Data   User
	Result User
}

type DeletedEvent struct {
	Sender User
	Result User
}

type LoggedInEvent struct {
	Result User
	IP     string
}
