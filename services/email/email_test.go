package emailsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"testing"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testConfig() *core.Config {
	return &core.Config{AppName: "Campus", SendgridApiKey: "SG.key"}
}

func inviteMessage() *core.EmailMessage {
	return &core.EmailMessage{
		From:       &mail.Address{Name: "MVJCE Attendance", Address: "YOUR_VERIFIED_SENDER@mvjce.edu.in"},
		To:         []mail.Address{{Name: "Asha", Address: "asha@example.com"}},
		Subject:    "Complete your registration",
		TemplateID: "d-0830e1f6d430414c8b3488a572e5e8fc",
		DynamicData: map[string]interface{}{
			"student_name":      "Asha",
			"registration_link": "https://campus.test/register?usn=1MJ21CS001",
		},
	}
}

func TestSendgridService_Send(t *testing.T) {
	origAPI := sendgridAPIFunc
	defer func() { sendgridAPIFunc = origAPI }()

	var sent rest.Request
	status := http.StatusAccepted
	sendgridAPIFunc = func(req rest.Request) (*rest.Response, error) {
		sent = req
		return &rest.Response{StatusCode: status, Body: `{"errors":[]}`}, nil
	}
	svc := NewSendgridService(testConfig(), nopLogger{})

	t.Run("dynamic template", func(t *testing.T) {
		require.NoError(t, svc.Send(context.Background(), inviteMessage()))
		assert.Equal(t, http.MethodPost, string(sent.Method))
		assert.Equal(t, "Bearer SG.key", sent.Headers["Authorization"])

		var body struct {
			From             struct{ Email string }
			TemplateID       string `json:"template_id"`
			Personalizations []struct {
				To   []struct{ Email string }
				Data map[string]interface{} `json:"dynamic_template_data"`
			}
		}
		require.NoError(t, json.Unmarshal(sent.Body, &body))
		assert.Equal(t, "YOUR_VERIFIED_SENDER@mvjce.edu.in", body.From.Email)
		assert.Equal(t, "d-0830e1f6d430414c8b3488a572e5e8fc", body.TemplateID)
		require.Len(t, body.Personalizations, 1)
		assert.Equal(t, "asha@example.com", body.Personalizations[0].To[0].Email)
		assert.Equal(t, map[string]interface{}{
			"student_name":      "Asha",
			"registration_link": "https://campus.test/register?usn=1MJ21CS001",
		}, body.Personalizations[0].Data)
	})

	t.Run("provider rejects", func(t *testing.T) {
		status = http.StatusUnauthorized
		defer func() { status = http.StatusAccepted }()
		assert.Error(t, svc.Send(context.Background(), inviteMessage()))
	})

	t.Run("transport failure", func(t *testing.T) {
		sendgridAPIFunc = func(rest.Request) (*rest.Response, error) { return nil, errors.New("dial tcp: timeout") }
		assert.Error(t, svc.Send(context.Background(), inviteMessage()))
	})
}

func TestConsoleServiceMock(t *testing.T) {
	ResetSentMessages()
	svc := NewConsoleServiceMock(testConfig(), nopLogger{})

	svc.SendMessages(inviteMessage(), &core.EmailMessage{Subject: "no recipients", BodyStr: "hi"})
	sent := LastSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "asha@example.com", sent[0].To[0].Address)

	require.NoError(t, svc.Send(context.Background(), &core.EmailMessage{
		To:      []mail.Address{{Address: "rao@example.com"}},
		Subject: "hello",
		BodyStr: "hello there",
	}))
	sent = LastSentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, "hello there", sent[1].TextContent)
}
