package services

import (
	"os"
	"testing"

	"github.com/fleetdesk/fleetdesk/modules/core/testhelpers"
)

func TestMain(m *testing.M) {
	testhelpers.MustEnforce()
	os.Exit(m.Run())
}
