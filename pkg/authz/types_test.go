package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectForRole(t *testing.T) {
	assert.Equal(t, "role:dispatcher", SubjectForRole("Dispatcher"))
	assert.Equal(t, "role:admin", SubjectForRole("role:admin"))
	assert.Equal(t, "role:anonymous", SubjectForRole(" "))
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "core.users", ObjectName("CORE", "Users"))
	assert.Equal(t, "global.resource", ObjectName("", ""))
}

func TestNormalizeAction(t *testing.T) {
	assert.Equal(t, "update", NormalizeAction(" Update "))
	assert.Equal(t, "*", NormalizeAction(""))
}
