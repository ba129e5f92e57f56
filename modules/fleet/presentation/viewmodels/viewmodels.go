package viewmodels

type Truck struct {
	ID            string  `json:"id"`
	UnitNumber    string  `json:"unitNumber"`
	PlateNumber   string  `json:"plateNumber"`
	VIN           string  `json:"vin"`
	Make          string  `json:"make"`
	Model         string  `json:"model"`
	Year          int     `json:"year"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	DriverID      *string `json:"driverId"`
	DriverName    string  `json:"driverName"`
	CapacityLbs   int     `json:"capacityLbs"`
	Location      string  `json:"location"`
	PhotoUploadID *string `json:"photoUploadId"`
	PhotoURL      string  `json:"photoUrl"`
	Notes         string  `json:"notes"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}
