package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/attendance"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

var errRecordNotFound = errors.New("attendance record not found")

type attendanceRepository struct {
	coll docstore.Collection[attendance.Record]
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{coll: collection[attendance.Record](db, attendanceColl)}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if _, err := repo.coll.Insert(ctx, &rec); err != nil {
		return attendance.Record{}, writeErr(attendanceColl, err, errRecordNotFound)
	}
	return rec, nil
}

func (repo *attendanceRepository) QueryRecordsByTeacher(ctx context.Context, teacherUsername string) ([]attendance.Record, error) {
	recs, err := repo.coll.FindBy(ctx, "teacherUsername", teacherUsername)
	if err != nil {
		return nil, readErr(attendanceColl, err, errRecordNotFound)
	}
	return recs, nil
}
