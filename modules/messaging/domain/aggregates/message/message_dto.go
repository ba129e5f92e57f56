package message

import (
	"strings"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/pkg/constants"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type SendDTO struct {
	RecipientID uuid.UUID  `json:"recipientId"`
	Body        string     `json:"body" validate:"required,max=4096"`
	DispatchID  *uuid.UUID `json:"dispatchId"`
}

func (d *SendDTO) Normalize() {
	d.Body = strings.TrimSpace(d.Body)
	if d.DispatchID != nil && *d.DispatchID == uuid.Nil {
		d.DispatchID = nil
	}
}

func (d *SendDTO) Ok() error {
	d.Normalize()
	errs, err := serrors.Collect(constants.Validate.Struct(d), nil)
	if err != nil {
		return err
	}
	if d.RecipientID == uuid.Nil {
		errs.Add("recipientId", "is required")
	}
	return errs.OrNil()
}

func (d *SendDTO) ToEntity(senderID uuid.UUID) *Message {
	return New(senderID, d.RecipientID, d.Body, d.DispatchID)
}
