package truck

import "github.com/fleetdesk/fleetdesk/pkg/serrors"

var (
	ErrNotFound        = serrors.NotFound("TRUCK_NOT_FOUND", "truck not found")
	ErrUnitNumberTaken = serrors.Conflict("TRUCK_UNIT_TAKEN", "unit number already in use")
	ErrNotADriver      = serrors.Invalid("TRUCK_NOT_A_DRIVER", "assigned user must have the driver role")
	ErrInactiveDriver  = serrors.Invalid("TRUCK_DRIVER_INACTIVE", "assigned driver is inactive")
	ErrUnknownPhoto    = serrors.Invalid("TRUCK_UNKNOWN_PHOTO", "photo upload does not exist")
	ErrInUse           = serrors.Conflict("TRUCK_IN_USE", "truck is referenced by dispatches")
)

// ErrDriverTaken surfaces a concurrent assignment of the same driver.
var ErrDriverTaken = serrors.Conflict("TRUCK_DRIVER_TAKEN", "driver is already assigned to another truck")

var ErrPhotoNotImage = serrors.Invalid("TRUCK_PHOTO_NOT_IMAGE", "truck photo must be an image")
