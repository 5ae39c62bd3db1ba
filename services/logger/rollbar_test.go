package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
)

func TestRollbarLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "TEST : ", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)

	sess := auth.Session{ID: "s1", UserType: auth.RoleCC, UserID: "u1", Username: "cc1"}
	extra := map[string]interface{}{"studentId": "42"}
	err := errors.New("boom")

	args := logger.prepare("queueing invite", []interface{}{err, extra, sess, nil})
	assert.Equal(t, []interface{}{"queueing invite", err, extra}, args, "sessions are not forwarded as data")

	logger.Error("queueing invite", err, sess)
	out := buf.String()
	assert.Contains(t, out, "TEST : ERROR queueing invite")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "user: cc1 (cc)")
}
