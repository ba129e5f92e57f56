// Package seed inserts demo carriers, customers, facilities and factoring
// companies.
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	"github.com/fleetdesk/fleetdesk/modules/contragents/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

func intPtr(v int) *int { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var DemoContragents = []contragent.Contragent{
	{Type: contragent.TypeCustomer, Name: "Lone Star Grocers", Email: "ap@lonestargrocers.test", Phone: "+1 214 555 0190", Address: "1200 Elm St, Dallas, TX", ContactPerson: "Karen Holt",
		Details: contragent.Details{CreditLimit: dec("50000"), PaymentTermsDays: intPtr(30)}},
	{Type: contragent.TypeCustomer, Name: "Alamo Building Supply", Email: "billing@alamobuild.test", Phone: "+1 210 555 0143", Address: "88 Commerce St, San Antonio, TX", ContactPerson: "Ray Ortiz",
		Details: contragent.Details{CreditLimit: dec("20000"), PaymentTermsDays: intPtr(45)}},
	{Type: contragent.TypeCarrier, Name: "Red River Haulers", Email: "ops@redriver.test", Phone: "+1 405 555 0177", Address: "9 Industrial Blvd, Oklahoma City, OK", ContactPerson: "Joe Pruitt",
		Details: contragent.Details{MCNumber: "MC-784512", DOTNumber: "2231987"}},
	{Type: contragent.TypeFacility, Name: "Port of Houston Yard 4", Phone: "+1 713 555 0102", Address: "111 Port Rd, Houston, TX", ContactPerson: "Gate office",
		Details: contragent.Details{WorkingHours: "Mon-Fri 06:00-18:00", DockCount: intPtr(12)}},
	{Type: contragent.TypeFactoring, Name: "Prairie Capital Factoring", Email: "service@prairiecap.test", Phone: "+1 512 555 0166", Address: "300 Congress Ave, Austin, TX", ContactPerson: "Nina Park",
		Details: contragent.Details{FeePercent: dec("2.75"), RemitEmail: "remit@prairiecap.test"}},
}

// ContragentSeedFunc creates the contragents whose name is not taken yet.
func ContragentSeedFunc(items ...contragent.Contragent) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		repo := persistence.NewContragentRepository()
		logger := app.Logger().WithField("component", "seed")
		return composables.InTx(ctx, func(txCtx context.Context) error {
			existing, err := repo.GetPaginated(txCtx, &contragent.FindParams{})
			if err != nil {
				return err
			}
			names := make(map[string]bool, len(existing))
			for _, c := range existing {
				names[c.Name] = true
			}
			now := time.Now().UTC()
			for _, demo := range items {
				if names[demo.Name] {
					logger.Infof("Contragent %s already exists", demo.Name)
					continue
				}
				c := demo
				c.ID = uuid.New()
				c.CreatedAt = now
				c.UpdatedAt = now
				if _, err := repo.Create(txCtx, &c); err != nil {
					return err
				}
				logger.Infof("Created %s %s", c.Type, c.Name)
			}
			return nil
		})
	}
}
