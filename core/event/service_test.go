package event_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/event"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
)

var (
	pngData = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	pdfData = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
)

type fakeRepo struct {
	reqs map[string]event.Request
	ids  []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reqs: make(map[string]event.Request)}
}

func (r *fakeRepo) CreateRequest(_ context.Context, req event.Request) (event.Request, error) {
	req.ID = fmt.Sprintf("req%d", len(r.ids)+1)
	r.reqs[req.ID] = req
	r.ids = append(r.ids, req.ID)
	return req, nil
}

func (r *fakeRepo) QueryAllRequests(context.Context) ([]event.Request, error) {
	reqs := make([]event.Request, 0)
	for _, id := range r.ids {
		if req, ok := r.reqs[id]; ok {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

func (r *fakeRepo) QueryRequestsByStudent(ctx context.Context, usn string) ([]event.Request, error) {
	all, _ := r.QueryAllRequests(ctx)
	reqs := make([]event.Request, 0)
	for _, req := range all {
		if req.StudentUsn == usn {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

func (r *fakeRepo) GetRequestByID(_ context.Context, id string) (event.Request, error) {
	req, ok := r.reqs[id]
	if !ok {
		return event.Request{}, event.ErrNotFound
	}
	return req, nil
}

func (r *fakeRepo) UpdateRequest(_ context.Context, req event.Request) (event.Request, error) {
	if _, ok := r.reqs[req.ID]; !ok {
		return event.Request{}, event.ErrNotFound
	}
	r.reqs[req.ID] = req
	return req, nil
}

func (r *fakeRepo) DeleteRequest(_ context.Context, id string) error {
	if _, ok := r.reqs[id]; !ok {
		return event.ErrNotFound
	}
	delete(r.reqs, id)
	return nil
}

type fakeMedia struct {
	saved []string
}

func (m *fakeMedia) Save(_ context.Context, folder string, f upload.File) (string, error) {
	url := "https://media.test/" + folder + "/" + f.Name
	m.saved = append(m.saved, url)
	return url, nil
}

func newRequest() event.NewRequest {
	letter := upload.FromBytes("letter.pdf", upload.MimePDF, pdfData)
	selfie := upload.FromBytes("me.png", "image/png", pngData)
	return event.NewRequest{
		EventName:        " Hackathon ",
		EventDate:        "2024-03-10",
		EventTime:        "10:00",
		Venue:            "Main hall",
		AffectedSubject:  "Data Structures",
		PermissionLetter: &letter,
		Selfie:           &selfie,
	}
}

func newService() (event.Service, *fakeRepo, *fakeMedia) {
	repo, media := newFakeRepo(), &fakeMedia{}
	validate := core.NewValidator(core.NewTranslator())
	return event.NewService(repo, media, validate, 5<<20), repo, media
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		svc, repo, media := newService()
		req, err := svc.Create(ctx, "1MJ21CS001", newRequest())
		require.NoError(t, err)
		assert.NotEmpty(t, req.ID)
		assert.Equal(t, "Hackathon", req.EventName)
		assert.Equal(t, event.StatusPending, req.Status)
		assert.Equal(t, "1MJ21CS001", req.StudentUsn)
		assert.Equal(t, "https://media.test/events/letters/letter.pdf", req.PermissionLetterURL)
		assert.Equal(t, "https://media.test/events/selfies/me.png", req.SelfieURL)
		assert.Len(t, media.saved, 2)
		assert.Len(t, repo.reqs, 1)
	})

	tests := []struct {
		name    string
		modify  func(nr *event.NewRequest)
		wantErr error
	}{
		{"missing event name", func(nr *event.NewRequest) { nr.EventName = " " }, nil},
		{"missing letter", func(nr *event.NewRequest) { nr.PermissionLetter = nil }, nil},
		{"missing selfie", func(nr *event.NewRequest) { nr.Selfie = nil }, nil},
		{"letter as text", func(nr *event.NewRequest) {
			f := upload.FromBytes("letter.txt", "text/plain", []byte("please"))
			nr.PermissionLetter = &f
		}, core.ErrUnsupportedFileType},
		{"pdf selfie", func(nr *event.NewRequest) {
			f := upload.FromBytes("me.pdf", upload.MimePDF, pdfData)
			nr.Selfie = &f
		}, core.ErrUnsupportedFileType},
		{"selfie too large", func(nr *event.NewRequest) {
			f := upload.FromBytes("me.png", "image/png", pngData)
			f.Size = 6 << 20
			nr.Selfie = &f
		}, core.ErrFileTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, media := newService()
			nr := newRequest()
			tc.modify(&nr)

			_, err := svc.Create(ctx, "1MJ21CS001", nr)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, errors.Cause(err))
			} else {
				assert.True(t, core.IsValidationError(err), err)
			}
			assert.Empty(t, media.saved)
			assert.Empty(t, repo.reqs)
		})
	}
}

func TestService_ListReviewDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	mine, err := svc.Create(ctx, "1MJ21CS001", newRequest())
	require.NoError(t, err)
	other, err := svc.Create(ctx, "1MJ21CS002", newRequest())
	require.NoError(t, err)

	reqs, err := svc.List(ctx, event.Filter{StudentUsn: "1MJ21CS001"})
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, mine.ID, reqs[0].ID)

	reqs, err = svc.List(ctx, event.Filter{})
	require.NoError(t, err)
	assert.Len(t, reqs, 2)

	t.Run("invalid review status", func(t *testing.T) {
		_, err := svc.Review(ctx, other.ID, "cc1", event.Review{Status: "pending"})
		assert.Error(t, err)
	})

	t.Run("review", func(t *testing.T) {
		reviewed, err := svc.Review(ctx, other.ID, "cc1", event.Review{Status: "Approved"})
		require.NoError(t, err)
		assert.Equal(t, event.StatusApproved, reviewed.Status)
		assert.Equal(t, "cc1", reviewed.ReviewedBy)
		require.NotNil(t, reviewed.ReviewedAt)

		_, err = svc.Review(ctx, other.ID, "cc1", event.Review{Status: "rejected"})
		assert.True(t, core.IsValidationError(err))

		_, err = svc.Review(ctx, "nope", "cc1", event.Review{Status: "rejected"})
		assert.Equal(t, event.ErrNotFound, errors.Cause(err))
	})

	t.Run("list by status", func(t *testing.T) {
		reqs, err := svc.List(ctx, event.Filter{Status: "approved"})
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, other.ID, reqs[0].ID)

		reqs, err = svc.List(ctx, event.Filter{Status: "rejected"})
		require.NoError(t, err)
		assert.Empty(t, reqs)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, event.ErrNotOwner, svc.Delete(ctx, mine.ID, "1MJ21CS002"))
		assert.True(t, core.IsValidationError(svc.Delete(ctx, other.ID, "1MJ21CS002")))
		require.NoError(t, svc.Delete(ctx, mine.ID, "1MJ21CS001"))
		_, err := svc.Get(ctx, mine.ID)
		assert.Equal(t, event.ErrNotFound, err)
	})
}
