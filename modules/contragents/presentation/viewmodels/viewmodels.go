package viewmodels

type Contragent struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	ContactPerson string `json:"contactPerson"`
	Notes         string `json:"notes"`

	MCNumber         string  `json:"mcNumber,omitempty"`
	DOTNumber        string  `json:"dotNumber,omitempty"`
	CreditLimit      *string `json:"creditLimit,omitempty"`
	PaymentTermsDays *int    `json:"paymentTermsDays,omitempty"`
	WorkingHours     string  `json:"workingHours,omitempty"`
	DockCount        *int    `json:"dockCount,omitempty"`
	FeePercent       *string `json:"feePercent,omitempty"`
	RemitEmail       string  `json:"remitEmail,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
