package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Meghashree-V/smart-surveillance-system-for-campus/apps/api/echo"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
	emailsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/email"
)

func TestInviteAPI_Send(t *testing.T) {
	env := setup(t, nil)

	inv := invite.Invite{
		Email:            " Meera@MVJCE.edu.in ",
		Name:             "Meera",
		RegistrationLink: "http://localhost:5173/register?usn=1MJ21CS010",
	}
	missingFields := marchallObj(t, httpErr{Error: "Missing required fields"})

	tests := []httpTest{
		{
			name:     "wrong method",
			method:   http.MethodGet,
			wantCode: http.StatusMethodNotAllowed,
			wantData: marchallObj(t, httpErr{Error: "Method not allowed"}),
		},
		{
			name:     "missing email",
			method:   http.MethodPost,
			body:     marchallObj(t, invite.Invite{Name: inv.Name, RegistrationLink: inv.RegistrationLink}),
			wantCode: http.StatusBadRequest,
			wantData: missingFields,
		},
		{
			name:     "blank registration link",
			method:   http.MethodPost,
			body:     marchallObj(t, invite.Invite{Email: inv.Email, Name: inv.Name, RegistrationLink: "  "}),
			wantCode: http.StatusBadRequest,
			wantData: missingFields,
		},
		{
			name:     "success",
			method:   http.MethodPost,
			body:     marchallObj(t, inv),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, MessageResponse{Message: "Invite sent"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ResetSentMessages()
			req, rec := newRequest(tt.method, "/v1/invites/send", tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode != http.StatusOK {
				assert.Empty(t, emailsvc.LastSentMessages())
			}
		})
	}

	t.Run("the provider template is used", func(t *testing.T) {
		emailsvc.ResetSentMessages()
		req, rec := newRequest(http.MethodPost, "/v1/invites/send", marchallObj(t, inv))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		sent := emailsvc.LastSentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "d-test-template", sent[0].TemplateID)
		assert.Equal(t, "meera@mvjce.edu.in", sent[0].To[0].Address)
		assert.Equal(t, "attendance@mvjce.edu.in", sent[0].From.Address)
		assert.Equal(t, "MVJCE Attendance", sent[0].From.Name)
		assert.Equal(t, inv.RegistrationLink, sent[0].DynamicData["registration_link"])
		assert.Equal(t, "Meera", sent[0].DynamicData["student_name"])
	})
}
