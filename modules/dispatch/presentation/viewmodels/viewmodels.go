package viewmodels

import "encoding/json"

type Dispatch struct {
	ID             string  `json:"id"`
	Number         string  `json:"number"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	PickupAt       string  `json:"pickupAt"`
	DeliveryAt     string  `json:"deliveryAt"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	TruckID        *string `json:"truckId"`
	TruckUnit      string  `json:"truckUnit"`
	DriverID       *string `json:"driverId"`
	DriverName     string  `json:"driverName"`
	DispatcherID   *string `json:"dispatcherId"`
	DispatcherName string  `json:"dispatcherName"`
	CustomerID     *string `json:"customerId"`
	CustomerName   string  `json:"customerName"`
	CarrierID      *string `json:"carrierId"`
	CarrierName    string  `json:"carrierName"`
	Rate           string  `json:"rate"`
	Currency       string  `json:"currency"`
	RateFormatted  string  `json:"rateFormatted"`
	WeightLbs      int     `json:"weightLbs"`
	Notes          string  `json:"notes"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

type HistoryEntry struct {
	ID        int64           `json:"id"`
	Action    string          `json:"action"`
	ActorID   *string         `json:"actorId"`
	ActorName string          `json:"actorName"`
	Diff      json.RawMessage `json:"diff"`
	CreatedAt string          `json:"createdAt"`
}
