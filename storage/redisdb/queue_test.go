package redisdb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name string
		msg  core.Message
	}{
		{"plain", core.Message{Type: "invite", Body: []byte(`{"studentId":"1"}`)}},
		{"pipe in body", core.Message{Type: "invite", Body: []byte(`a|b|c`)}},
		{"empty body", core.Message{Type: "invite", Body: []byte{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, deserialize(serialize(tt.msg)))
		})
	}

	assert.Equal(t, core.Message{Body: []byte("raw")}, deserialize("raw"))
}
