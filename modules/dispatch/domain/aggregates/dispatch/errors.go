package dispatch

import "github.com/fleetdesk/fleetdesk/pkg/serrors"

var (
	ErrNotFound          = serrors.NotFound("DISPATCH_NOT_FOUND", "dispatch not found")
	ErrInvalidTransition = serrors.Conflict("DISPATCH_INVALID_TRANSITION", "status change is not allowed")
	ErrNotDeletable      = serrors.Conflict("DISPATCH_NOT_DELETABLE", "only pending or cancelled dispatches can be deleted")
	ErrNotAssignable     = serrors.Conflict("DISPATCH_NOT_ASSIGNABLE", "only pending or assigned dispatches can be assigned")
	ErrNotAssigned       = serrors.Invalid("DISPATCH_NOT_ASSIGNED", "dispatch needs a truck and a driver first")
	ErrTruckUnavailable  = serrors.Invalid("DISPATCH_TRUCK_UNAVAILABLE", "truck is in maintenance or out of service")
	ErrUnknownTruck      = serrors.Invalid("DISPATCH_UNKNOWN_TRUCK", "truck does not exist")
	ErrNoDriver          = serrors.Invalid("DISPATCH_NO_DRIVER", "truck has no driver and none was given")
	ErrNotADriver        = serrors.Invalid("DISPATCH_NOT_A_DRIVER", "assigned user must be an active driver")
	ErrNotCustomer       = serrors.Invalid("DISPATCH_NOT_CUSTOMER", "customer must be a contragent of type customer")
	ErrNotCarrier        = serrors.Invalid("DISPATCH_NOT_CARRIER", "carrier must be a contragent of type carrier")
	ErrDriverBusy        = serrors.Conflict("DISPATCH_DRIVER_BUSY", "driver has assigned or in-transit dispatches")
)
