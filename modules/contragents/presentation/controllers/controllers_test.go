package controllers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	"github.com/fleetdesk/fleetdesk/modules/contragents/presentation/controllers"
	"github.com/fleetdesk/fleetdesk/modules/contragents/presentation/viewmodels"
	"github.com/fleetdesk/fleetdesk/modules/contragents/services"
	"github.com/fleetdesk/fleetdesk/modules/contragents/testhelpers"
	coretesthelpers "github.com/fleetdesk/fleetdesk/modules/core/testhelpers"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/constants"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
)

func TestMain(m *testing.M) {
	coretesthelpers.MustEnforce()
	os.Exit(m.Run())
}

func newRouter(t *testing.T, repo *testhelpers.ContragentRepository) *mux.Router {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	pub := &coretesthelpers.Publisher{}
	app := application.New(&application.ApplicationOptions{Logger: logger, EventBus: pub})
	app.RegisterServices(services.NewContragentService(repo, pub))

	r := mux.NewRouter()
	r.Use(
		middleware.Provide(constants.PoolKey, &itf.FakeDB{}),
		middleware.Authorize(coretesthelpers.RoleTokens(), "sid"),
	)
	controllers.NewContragentsController(app).Register(r)
	return r
}

func do(r *mux.Router, method, path, role, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+role)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestContragents_Create(t *testing.T) {
	r := newRouter(t, testhelpers.NewContragentRepository())

	rec := do(r, http.MethodPost, "/api/contragents", "dispatcher",
		`{"type":"customer","name":"Lone Star Grocers","creditLimit":"25000","paymentTermsDays":30}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env struct {
		Data viewmodels.Contragent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Data.CreditLimit)
	assert.Equal(t, "25000.00", *env.Data.CreditLimit)
	assert.Equal(t, 30, *env.Data.PaymentTermsDays)
	assert.Empty(t, env.Data.MCNumber)

	rec = do(r, http.MethodPost, "/api/contragents", "dispatcher",
		`{"type":"customer","name":"Mixed Up","mcNumber":"MC-1","feePercent":3}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errEnv httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errEnv))
	assert.Contains(t, errEnv.Error.Fields, "mcNumber")
	assert.Contains(t, errEnv.Error.Fields, "feePercent")

	rec = do(r, http.MethodPost, "/api/contragents", "driver", `{"type":"carrier","name":"X"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestContragents_ListAndDelete(t *testing.T) {
	used := &contragent.Contragent{ID: uuid.New(), Type: contragent.TypeCarrier, Name: "Bayou Freight"}
	free := &contragent.Contragent{ID: uuid.New(), Type: contragent.TypeFacility, Name: "Port of Houston Yard"}
	repo := testhelpers.NewContragentRepository(used, free)
	repo.InUse[used.ID] = true
	r := newRouter(t, repo)

	rec := do(r, http.MethodGet, "/api/contragents?type=facility", "manager", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []viewmodels.Contragent `json:"data"`
		Meta httpapi.ListMeta        `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.EqualValues(t, 1, list.Meta.Total)
	assert.Equal(t, free.ID.String(), list.Data[0].ID)

	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodGet, "/api/contragents?type=broker", "manager", "").Code)

	rec = do(r, http.MethodDelete, "/api/contragents/"+used.ID.String(), "manager", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/contragents/"+free.ID.String(), "manager", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/contragents/"+free.ID.String(), "manager", "").Code)
}
