package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	coreservices "github.com/fleetdesk/fleetdesk/modules/core/services"
	coretesthelpers "github.com/fleetdesk/fleetdesk/modules/core/testhelpers"
	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	"github.com/fleetdesk/fleetdesk/modules/fleet/testhelpers"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type fixture struct {
	svc      *TruckService
	repo     *testhelpers.TruckRepository
	users    *coretesthelpers.UserRepository
	uploads  *coretesthelpers.UploadRepository
	pub      *coretesthelpers.Publisher
	driver   user.User
	inactive user.User
	manager  user.User
}

func newFixture(t *testing.T, trucks ...*truck.Truck) *fixture {
	t.Helper()
	f := &fixture{
		repo:     testhelpers.NewTruckRepository(trucks...),
		uploads:  coretesthelpers.NewUploadRepository(),
		pub:      &coretesthelpers.Publisher{},
		driver:   user.New("luis@fleet.test", "Luis", "Gonzalez", user.RoleDriver),
		inactive: user.New("old@fleet.test", "Old", "Hand", user.RoleDriver, user.WithActive(false)),
		manager:  user.New("mia@fleet.test", "Mia", "Manager", user.RoleManager),
	}
	f.users = coretesthelpers.NewUserRepository(f.driver, f.inactive, f.manager)
	f.svc = NewTruckService(f.repo, f.users, f.uploads, f.pub)
	return f
}

func sampleTruck(unit string, status truck.Status) *truck.Truck {
	return &truck.Truck{
		ID:          uuid.New(),
		UnitNumber:  unit,
		PlateNumber: "PL-" + unit,
		Make:        "Peterbilt",
		Model:       "579",
		Year:        2019,
		Type:        truck.TypeFlatbed,
		Status:      status,
		Location:    "Dallas, TX",
		CreatedAt:   time.Now().UTC(),
	}
}

func createDTO(unit string) *truck.DTO {
	return &truck.DTO{
		UnitNumber:  unit,
		PlateNumber: "TX-1",
		Make:        "Volvo",
		Model:       "VNL",
		Year:        2022,
		Type:        "dry_van",
	}
}

func TestTruckService_Create(t *testing.T) {
	f := newFixture(t)
	ctx, db := itf.Ctx(itf.User(user.RoleAdmin))

	created, err := f.svc.Create(ctx, createDTO("t-1"))
	require.NoError(t, err)
	assert.Equal(t, "T-1", created.UnitNumber)
	assert.Equal(t, truck.StatusAvailable, created.Status)
	assert.True(t, db.LastTx().Committed())
	require.Len(t, f.pub.Events(), 1)
	assert.IsType(t, &truck.CreatedEvent{}, f.pub.Events()[0])

	_, err = f.svc.Create(ctx, createDTO("T-1"))
	assert.ErrorIs(t, err, truck.ErrUnitNumberTaken)

	_, err = f.svc.Create(ctx, &truck.DTO{})
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "unitNumber")
	assert.Contains(t, verrs, "type")
}

func TestTruckService_CreateChecksReferences(t *testing.T) {
	f := newFixture(t)
	ctx, _ := itf.Ctx(itf.User(user.RoleAdmin))

	cases := []struct {
		name string
		edit func(d *truck.DTO)
		want error
	}{
		{"manager as driver", func(d *truck.DTO) { id := f.manager.ID(); d.DriverID = &id }, truck.ErrNotADriver},
		{"unknown driver", func(d *truck.DTO) { id := uuid.New(); d.DriverID = &id }, truck.ErrNotADriver},
		{"inactive driver", func(d *truck.DTO) { id := f.inactive.ID(); d.DriverID = &id }, truck.ErrInactiveDriver},
		{"unknown photo", func(d *truck.DTO) { id := uuid.New(); d.PhotoUploadID = &id }, truck.ErrUnknownPhoto},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := createDTO("X-" + string(rune('A'+i)))
			tc.edit(d)
			_, err := f.svc.Create(ctx, d)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	pdf, err := f.uploads.Create(context.Background(), &upload.Upload{ID: uuid.New(), Hash: "pdf", Mimetype: "application/pdf"})
	require.NoError(t, err)
	d := createDTO("X-PDF")
	d.PhotoUploadID = &pdf.ID
	_, err = f.svc.Create(ctx, d)
	assert.ErrorIs(t, err, truck.ErrPhotoNotImage)

	img, err := f.uploads.Create(context.Background(), &upload.Upload{ID: uuid.New(), Hash: "img", Mimetype: "image/png"})
	require.NoError(t, err)
	d = createDTO("X-IMG")
	d.PhotoUploadID = &img.ID
	created, err := f.svc.Create(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, img.ID, *created.PhotoUploadID)
}

func TestTruckService_Permissions(t *testing.T) {
	f := newFixture(t)

	driverCtx, _ := itf.Ctx(itf.User(user.RoleDriver))
	_, err := f.svc.Create(driverCtx, createDTO("T-9"))
	assert.ErrorIs(t, err, authz.ErrForbidden)
	_, _, err = f.svc.GetPaginatedWithTotal(driverCtx, &truck.FindParams{})
	assert.NoError(t, err)

	dispatcherCtx, _ := itf.Ctx(itf.User(user.RoleDispatcher))
	_, err = f.svc.Delete(dispatcherCtx, uuid.New())
	assert.ErrorIs(t, err, authz.ErrForbidden)
	_, err = f.svc.Export(dispatcherCtx, &truck.FindParams{})
	assert.ErrorIs(t, err, authz.ErrForbidden)

	managerCtx, _ := itf.Ctx(itf.User(user.RoleManager))
	_, err = f.svc.Export(managerCtx, &truck.FindParams{})
	assert.NoError(t, err)
}

func TestTruckService_AssignDriverMovesDriver(t *testing.T) {
	a := sampleTruck("T-1", truck.StatusAvailable)
	b := sampleTruck("T-2", truck.StatusAvailable)
	f := newFixture(t, a, b)
	ctx, _ := itf.Ctx(itf.User(user.RoleDispatcher))
	driverID := f.driver.ID()

	assigned, err := f.svc.AssignDriver(ctx, a.ID, &driverID)
	require.NoError(t, err)
	assert.Equal(t, driverID, *assigned.DriverID)

	moved, err := f.svc.AssignDriver(ctx, b.ID, &driverID)
	require.NoError(t, err)
	assert.Equal(t, driverID, *moved.DriverID)

	first, err := f.repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, first.DriverID, "driver is released from the previous truck")

	current, err := f.svc.GetByDriverID(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, current.ID)

	unassigned, err := f.svc.AssignDriver(ctx, b.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, unassigned.DriverID)

	var assignedEvents int
	for _, ev := range f.pub.Events() {
		if _, ok := ev.(*truck.DriverAssignedEvent); ok {
			assignedEvents++
		}
	}
	assert.Equal(t, 3, assignedEvents)

	managerID := f.manager.ID()
	_, err = f.svc.AssignDriver(ctx, a.ID, &managerID)
	assert.ErrorIs(t, err, truck.ErrNotADriver)

	_, err = f.svc.AssignDriver(ctx, uuid.New(), &driverID)
	assert.ErrorIs(t, err, truck.ErrNotFound)
}

func TestTruckService_ReleaseDriverOnRetirement(t *testing.T) {
	a := sampleTruck("T-1", truck.StatusAvailable)
	f := newFixture(t, a)
	driverID := f.driver.ID()
	a.DriverID = &driverID
	f.repo = testhelpers.NewTruckRepository(a)
	f.svc = NewTruckService(f.repo, f.users, f.uploads, f.pub)

	users := coreservices.NewUserService(f.users, f.pub)
	users.OnDriverRetired(f.svc.ReleaseDriver)
	ctx, _ := itf.Ctx(itf.User(user.RoleAdmin))

	_, err := users.Update(ctx, driverID, &user.UpdateDTO{FirstName: "Luis", LastName: "Gonzalez", Role: "manager"})
	require.NoError(t, err)

	stored, err := f.repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DriverID)
}

func TestTruckService_UpdateReassignsDriver(t *testing.T) {
	a := sampleTruck("T-1", truck.StatusAvailable)
	b := sampleTruck("T-2", truck.StatusMaintenance)
	f := newFixture(t, a, b)
	driverID := f.driver.ID()
	a.DriverID = &driverID
	_, err := f.repo.Update(context.Background(), a)
	require.NoError(t, err)

	ctx, _ := itf.Ctx(itf.User(user.RoleAdmin))
	d := truck.DTOFromEntity(b)
	d.DriverID = &driverID
	d.Status = string(truck.StatusAvailable)
	updated, err := f.svc.Update(ctx, b.ID, d)
	require.NoError(t, err)
	assert.Equal(t, truck.StatusAvailable, updated.Status)
	assert.Equal(t, driverID, *updated.DriverID)

	first, err := f.repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, first.DriverID)

	events := f.pub.Events()
	require.Len(t, events, 2)
	ev, ok := events[0].(*truck.UpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, truck.StatusMaintenance, ev.Before.Status)
	assert.IsType(t, &truck.DriverAssignedEvent{}, events[1])
}

func TestTruckService_Search(t *testing.T) {
	a := sampleTruck("T-100", truck.StatusAvailable)
	a.Make = "Freightliner"
	b := sampleTruck("T-200", truck.StatusAvailable)
	b.Make = "Kenworth"
	c := sampleTruck("T-300", truck.StatusInTransit)
	c.Make = "Freightliner"
	f := newFixture(t, a, b, c)
	ctx, _ := itf.Ctx(itf.User(user.RoleDriver))

	items, total, err := f.svc.GetPaginatedWithTotal(ctx, &truck.FindParams{Q: "freight", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	items, total, err = f.svc.GetPaginatedWithTotal(ctx, &truck.FindParams{
		Q:        "freight",
		Statuses: []truck.Status{truck.StatusInTransit},
		Limit:    10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, c.ID, items[0].ID)

	items, total, err = f.svc.GetPaginatedWithTotal(ctx, &truck.FindParams{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "T-300", items[0].UnitNumber)
}

func TestTruckService_Delete(t *testing.T) {
	a := sampleTruck("T-1", truck.StatusAvailable)
	f := newFixture(t, a)
	ctx, _ := itf.Ctx(itf.User(user.RoleAdmin))

	deleted, err := f.svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, deleted.ID)
	_, err = f.svc.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, truck.ErrNotFound)
}

func TestDashboard(t *testing.T) {
	a := sampleTruck("T-1", truck.StatusAvailable)
	b := sampleTruck("T-2", truck.StatusMaintenance)
	f := newFixture(t, a, b)
	driverID := f.driver.ID()
	a.DriverID = &driverID
	_, err := f.repo.Update(context.Background(), a)
	require.NoError(t, err)
	contributor := Dashboard(f.svc)

	ctx, _ := itf.Ctx(f.manager)
	widgets, err := contributor.DashboardWidgets(ctx, f.manager)
	require.NoError(t, err)
	counts := widgets["trucksByStatus"].(map[truck.Status]int64)
	assert.EqualValues(t, 1, counts[truck.StatusMaintenance])

	dispatcher := itf.User(user.RoleDispatcher)
	widgets, err = contributor.DashboardWidgets(ctx, dispatcher)
	require.NoError(t, err)
	assert.EqualValues(t, 1, widgets["availableTrucks"])

	widgets, err = contributor.DashboardWidgets(ctx, f.driver)
	require.NoError(t, err)
	summary := widgets["currentTruck"].(*TruckSummary)
	assert.Equal(t, "T-1", summary.UnitNumber)

	other := itf.User(user.RoleDriver)
	widgets, err = contributor.DashboardWidgets(ctx, other)
	require.NoError(t, err)
	assert.Contains(t, widgets, "currentTruck")
	assert.Nil(t, widgets["currentTruck"])
}
