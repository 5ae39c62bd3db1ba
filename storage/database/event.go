package database

import (
	"context"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/event"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

type eventRepository struct {
	coll docstore.Collection[event.Request]
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{coll: collection[event.Request](db, eventsColl)}
}

func (repo *eventRepository) CreateRequest(ctx context.Context, req event.Request) (event.Request, error) {
	if _, err := repo.coll.Insert(ctx, &req); err != nil {
		return event.Request{}, writeErr(eventsColl, err, event.ErrNotFound)
	}
	return req, nil
}

func (repo *eventRepository) QueryAllRequests(ctx context.Context) ([]event.Request, error) {
	reqs, err := repo.coll.All(ctx)
	if err != nil {
		return nil, readErr(eventsColl, err, event.ErrNotFound)
	}
	return reqs, nil
}

func (repo *eventRepository) QueryRequestsByStudent(ctx context.Context, usn string) ([]event.Request, error) {
	reqs, err := repo.coll.FindBy(ctx, "studentUsn", usn)
	if err != nil {
		return nil, readErr(eventsColl, err, event.ErrNotFound)
	}
	return reqs, nil
}

func (repo *eventRepository) GetRequestByID(ctx context.Context, id string) (event.Request, error) {
	req, err := repo.coll.Get(ctx, id)
	if err != nil {
		return event.Request{}, readErr(eventsColl, err, event.ErrNotFound)
	}
	return req, nil
}

func (repo *eventRepository) UpdateRequest(ctx context.Context, req event.Request) (event.Request, error) {
	if err := repo.coll.Replace(ctx, req.ID, req); err != nil {
		return event.Request{}, writeErr(eventsColl, err, event.ErrNotFound)
	}
	return req, nil
}

func (repo *eventRepository) DeleteRequest(ctx context.Context, id string) error {
	return writeErr(eventsColl, repo.coll.Delete(ctx, id), event.ErrNotFound)
}
