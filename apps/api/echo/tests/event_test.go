package tests

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/event"
)

func eventForm() map[string]string {
	return map[string]string{
		"eventName":       "Hackathon",
		"eventDate":       "2024-03-15",
		"eventTime":       "09:00",
		"venue":           "Main Auditorium",
		"description":     "Inter college hackathon",
		"affectedSubject": "Compiler Design",
	}
}

func letterFile() formFile {
	return formFile{field: "permissionLetter", name: "letter.pdf", contentType: "application/pdf", data: pdfData}
}

func selfieFile() formFile {
	return formFile{field: "selfie", name: "selfie.png", contentType: "image/png", data: pngData}
}

func TestEventAPI_Create(t *testing.T) {
	env := setup(t, nil)
	token, _ := env.studentToken(t, "1MJ21CS001", "Asha")
	ccToken, _ := env.memberToken(t, auth.RoleCC, "awe")

	tests := []struct {
		name     string
		token    string
		fields   map[string]string
		files    []formFile
		wantCode int
		wantData []byte
	}{
		{
			name:     "only students request",
			token:    ccToken,
			fields:   eventForm(),
			files:    []formFile{letterFile(), selfieFile()},
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "missing documents",
			token:    token,
			fields:   eventForm(),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"permissionLetter": "a permission letter is required",
				"selfie":           "a selfie is required",
			}),
		},
		{
			name:     "missing fields",
			token:    token,
			fields:   map[string]string{"eventName": "Hackathon"},
			files:    []formFile{letterFile(), selfieFile()},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"eventDate":       "this field is required",
				"eventTime":       "this field is required",
				"venue":           "this field is required",
				"affectedSubject": "this field is required",
			}),
		},
		{
			name:     "selfie is a pdf",
			token:    token,
			fields:   eventForm(),
			files:    []formFile{letterFile(), {field: "selfie", name: "selfie.pdf", contentType: "application/pdf", data: pdfData}},
			wantCode: http.StatusUnsupportedMediaType,
			wantData: marchallObj(t, httpErr{Error: "unsupported file type"}),
		},
		{
			name:     "letter is a video",
			token:    token,
			fields:   eventForm(),
			files:    []formFile{{field: "permissionLetter", name: "letter.avi", contentType: "video/x-msvideo", data: aviData}, selfieFile()},
			wantCode: http.StatusUnsupportedMediaType,
			wantData: marchallObj(t, httpErr{Error: "unsupported file type"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newMultipartRequest(t, "/v1/events", tt.token, tt.fields, tt.files...)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}

	t.Run("success", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/v1/events", token, eventForm(), letterFile(), selfieFile())
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got event.Request
		unmarshallObj(t, rec, &got)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "1MJ21CS001", got.StudentUsn)
		assert.Equal(t, event.StatusPending, got.Status)
		assert.True(t, strings.HasPrefix(got.PermissionLetterURL, "/media/events/letters/"), got.PermissionLetterURL)
		assert.True(t, strings.HasPrefix(got.SelfieURL, "/media/events/selfies/"), got.SelfieURL)
		assert.Empty(t, got.ReviewedBy)

		req, rec = newRequest(http.MethodGet, got.SelfieURL)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, pngData, rec.Body.Bytes())
	})
}

func TestEventAPI_Workflow(t *testing.T) {
	env := setup(t, nil)
	ashaToken, _ := env.studentToken(t, "1MJ21CS001", "Asha")
	raviToken, _ := env.studentToken(t, "1MJ21CS002", "Ravi")
	ccToken, _ := env.memberToken(t, auth.RoleCC, "awe")
	teacherToken, _ := env.memberToken(t, auth.RoleTeacher, "rao")

	create := func(t *testing.T, token string) event.Request {
		req, rec := newMultipartRequest(t, "/v1/events", token, eventForm(), letterFile(), selfieFile())
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var got event.Request
		unmarshallObj(t, rec, &got)
		return got
	}
	list := func(t *testing.T, path, token string) []event.Request {
		req, rec := newAuthRequest(http.MethodGet, path, token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var reqs []event.Request
		unmarshallObj(t, rec, &reqs)
		return reqs
	}

	ashaReq := create(t, ashaToken)
	ashaReq2 := create(t, ashaToken)
	raviReq := create(t, raviToken)

	t.Run("students list their own requests", func(t *testing.T) {
		reqs := list(t, "/v1/events", ashaToken)
		require.Len(t, reqs, 2)
		for _, r := range reqs {
			assert.Equal(t, "1MJ21CS001", r.StudentUsn)
		}
	})

	t.Run("coordinators list every request", func(t *testing.T) {
		assert.Len(t, list(t, "/v1/events", ccToken), 3)
	})

	t.Run("teachers cannot list requests", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/events", teacherToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("students cannot see others requests", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/events/"+raviReq.ID, ashaToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: event.ErrNotFound.Error()}),
		}, rec)
	})

	t.Run("students cannot review", func(t *testing.T) {
		body := marchallObj(t, event.Review{Status: event.StatusApproved})
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/"+ashaReq.ID+"/review", ashaToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("invalid decision", func(t *testing.T) {
		body := marchallObj(t, event.Review{Status: event.StatusPending})
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/"+ashaReq.ID+"/review", ccToken, body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("review unknown request", func(t *testing.T) {
		body := marchallObj(t, event.Review{Status: event.StatusApproved})
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/lol/review", ccToken, body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("approve", func(t *testing.T) {
		body := marchallObj(t, event.Review{Status: " Approved "})
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/"+ashaReq.ID+"/review", ccToken, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got event.Request
		unmarshallObj(t, rec, &got)
		assert.Equal(t, event.StatusApproved, got.Status)
		assert.Equal(t, "awe", got.ReviewedBy)
		assert.NotNil(t, got.ReviewedAt)

		stored, err := env.evtRepo.GetRequestByID(context.Background(), ashaReq.ID)
		require.NoError(t, err)
		assert.Equal(t, event.StatusApproved, stored.Status)
	})

	t.Run("reviewed requests are final", func(t *testing.T) {
		body := marchallObj(t, event.Review{Status: event.StatusRejected})
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/"+ashaReq.ID+"/review", ccToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "event request was already reviewed"}),
		}, rec)
	})

	t.Run("filter by status", func(t *testing.T) {
		reqs := list(t, "/v1/events?status=approved", ccToken)
		require.Len(t, reqs, 1)
		assert.Equal(t, ashaReq.ID, reqs[0].ID)
		assert.Len(t, list(t, "/v1/events?status=pending", ashaToken), 1)
	})

	t.Run("delete another student's request", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/events/"+raviReq.ID, ashaToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("delete a reviewed request", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/events/"+ashaReq.ID, ashaToken)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("withdraw a pending request", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/events/"+ashaReq2.ID, ashaToken)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := env.evtRepo.GetRequestByID(context.Background(), ashaReq2.ID)
		assert.Equal(t, event.ErrNotFound, err)
	})
}
