package database

import (
	"context"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

type studentRepository struct {
	coll docstore.Collection[student.Student]
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{coll: collection[student.Student](db, studentsColl)}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if _, err := repo.coll.Insert(ctx, &std); err != nil {
		return student.Student{}, writeErr(studentsColl, err, student.ErrNotFound)
	}
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	students, err := repo.coll.All(ctx)
	if err != nil {
		return nil, readErr(studentsColl, err, student.ErrNotFound)
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	std, err := repo.coll.Get(ctx, id)
	if err != nil {
		return student.Student{}, readErr(studentsColl, err, student.ErrNotFound)
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByUsn(ctx context.Context, usn string) (student.Student, error) {
	students, err := repo.coll.FindBy(ctx, "usn", usn)
	if err != nil {
		return student.Student{}, readErr(studentsColl, err, student.ErrNotFound)
	}
	if len(students) == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return students[0], nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if err := repo.coll.Replace(ctx, std.ID, std); err != nil {
		return student.Student{}, writeErr(studentsColl, err, student.ErrNotFound)
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	return writeErr(studentsColl, repo.coll.Delete(ctx, id), student.ErrNotFound)
}
