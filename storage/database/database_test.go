package database

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/attendance"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/event"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

func TestStoreErr(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name      string
		op        core.StoreOp
		err       error
		wantErr   error
		wantRead  bool
		wantWrite bool
	}{
		{"nil", core.StoreRead, nil, nil, false, false},
		{"not found", core.StoreRead, docstore.ErrNotFound, student.ErrNotFound, false, false},
		{"invalid id", core.StoreWrite, docstore.ErrInvalidID, student.ErrNotFound, false, false},
		{"read failure", core.StoreRead, boom, nil, true, false},
		{"write failure", core.StoreWrite, boom, nil, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := storeErr(tc.op, studentsColl, tc.err, student.ErrNotFound)
			if tc.wantErr != nil || tc.err == nil {
				assert.Equal(t, tc.wantErr, err)
			}
			assert.Equal(t, tc.wantRead, core.IsStoreRead(err))
			assert.Equal(t, tc.wantWrite, core.IsStoreWrite(err))
			if tc.wantRead || tc.wantWrite {
				assert.Equal(t, "store "+string(tc.op)+" students: connection reset", err.Error())
			}
		})
	}
}

func TestOpen(t *testing.T) {
	conf := &core.Config{}
	db, err := Open(context.Background(), conf)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, db.Driver)
	assert.NoError(t, db.Healthy(context.Background()))
	assert.NoError(t, db.Migrate(context.Background()))
	assert.NoError(t, db.Close(context.Background()))

	conf.Store.Driver = "cassandra"
	_, err = Open(context.Background(), conf)
	assert.Error(t, err)

	assert.NoError(t, CreateIfNotExist(conf))
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewMemoryDB())

	adm, err := repo.CreateAdmin(ctx, user.Admin{Username: "admin", Name: "Administrator"})
	require.NoError(t, err)
	assert.NotEmpty(t, adm.ID)
	assert.False(t, adm.CreatedAt.IsZero())

	got, err := repo.GetAdminByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, adm.ID, got.ID)
	_, err = repo.GetAdminByUsername(ctx, "nobody")
	assert.Equal(t, user.ErrNotFound, err)

	cc, err := repo.CreateMember(ctx, user.Member{Username: "cc1", Role: auth.RoleCC, PasswordChanged: true})
	require.NoError(t, err)
	assert.Equal(t, user.StatusPending, cc.Status)
	assert.False(t, cc.PasswordChanged)
	assert.False(t, cc.CreatedAt.IsZero())

	teacher, err := repo.CreateMember(ctx, user.Member{Username: "rao", Role: auth.RoleTeacher, Subject: "DS"})
	require.NoError(t, err)

	_, err = repo.CreateMember(ctx, user.Member{Username: "x", Role: "janitor"})
	assert.Equal(t, user.ErrNotFound, err)

	t.Run("members live in the collection of their role", func(t *testing.T) {
		ccs, err := repo.QueryAllMembers(ctx, auth.RoleCC)
		require.NoError(t, err)
		require.Len(t, ccs, 1)
		assert.Equal(t, cc.ID, ccs[0].ID)

		_, err = repo.GetMemberByUsername(ctx, auth.RoleCC, "rao")
		assert.Equal(t, user.ErrNotFound, err)

		got, err := repo.GetMemberByUsername(ctx, auth.RoleTeacher, "rao")
		require.NoError(t, err)
		assert.Equal(t, "DS", got.Subject)
	})

	t.Run("update & delete", func(t *testing.T) {
		teacher.Status = user.StatusActive
		_, err := repo.UpdateMember(ctx, teacher)
		require.NoError(t, err)
		got, err := repo.GetMemberByID(ctx, auth.RoleTeacher, teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, user.StatusActive, got.Status)

		require.NoError(t, repo.DeleteMember(ctx, auth.RoleTeacher, teacher.ID))
		assert.Equal(t, user.ErrNotFound, repo.DeleteMember(ctx, auth.RoleTeacher, teacher.ID))
		_, err = repo.UpdateMember(ctx, teacher)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(NewMemoryDB())

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	std, err := repo.CreateStudent(ctx, student.Student{
		Usn:           "1MJ21CS001",
		Name:          "Asha",
		Semester:      "5",
		ParentDetails: student.ParentDetails{FatherName: "Ravi"},
		CreatedAt:     now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, std.ID)

	got, err := repo.GetStudentByUsn(ctx, "1MJ21CS001")
	require.NoError(t, err)
	assert.Equal(t, std.ID, got.ID)
	assert.Equal(t, "Ravi", got.ParentDetails.FatherName)
	assert.True(t, now.Equal(got.CreatedAt))

	_, err = repo.GetStudentByUsn(ctx, "1MJ21CS999")
	assert.Equal(t, student.ErrNotFound, err)
	_, err = repo.GetStudentByID(ctx, "")
	assert.Equal(t, student.ErrNotFound, err)

	got.Section = "B"
	_, err = repo.UpdateStudent(ctx, got)
	require.NoError(t, err)
	all, err := repo.QueryAllStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "B", all[0].Section)

	require.NoError(t, repo.DeleteStudent(ctx, std.ID))
	assert.Equal(t, student.ErrNotFound, repo.DeleteStudent(ctx, std.ID))
}

func TestAttendanceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(NewMemoryDB())

	for _, teacher := range []string{"rao", "iyer", "rao"} {
		_, err := repo.CreateRecord(ctx, attendance.Record{TeacherUsername: teacher, Usn: "1MJ21CS001"})
		require.NoError(t, err)
	}
	recs, err := repo.QueryRecordsByTeacher(ctx, "rao")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = repo.QueryRecordsByTeacher(ctx, "Rao")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestEventRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(NewMemoryDB())

	req, err := repo.CreateRequest(ctx, event.Request{StudentUsn: "1MJ21CS001", Status: event.StatusPending})
	require.NoError(t, err)
	_, err = repo.CreateRequest(ctx, event.Request{StudentUsn: "1MJ21CS002", Status: event.StatusPending})
	require.NoError(t, err)

	reqs, err := repo.QueryRequestsByStudent(ctx, "1MJ21CS001")
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, req.ID, reqs[0].ID)

	reviewedAt := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	req.Status = event.StatusApproved
	req.ReviewedAt = &reviewedAt
	_, err = repo.UpdateRequest(ctx, req)
	require.NoError(t, err)

	got, err := repo.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusApproved, got.Status)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, reviewedAt.Equal(*got.ReviewedAt))

	require.NoError(t, repo.DeleteRequest(ctx, req.ID))
	_, err = repo.GetRequestByID(ctx, req.ID)
	assert.Equal(t, event.ErrNotFound, err)

	all, err := repo.QueryAllRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
