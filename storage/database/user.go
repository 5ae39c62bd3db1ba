package database

import (
	"context"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

type userRepository struct {
	admins   docstore.Collection[user.Admin]
	ccs      docstore.Collection[user.Member]
	teachers docstore.Collection[user.Member]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{
		admins:   collection[user.Admin](db, adminsColl),
		ccs:      collection[user.Member](db, ccsColl),
		teachers: collection[user.Member](db, teachersColl),
	}
}

func (repo *userRepository) members(role string) (docstore.Collection[user.Member], string, bool) {
	switch role {
	case auth.RoleCC:
		return repo.ccs, ccsColl, true
	case auth.RoleTeacher:
		return repo.teachers, teachersColl, true
	}
	return nil, "", false
}

func (repo *userRepository) CreateAdmin(ctx context.Context, adm user.Admin) (user.Admin, error) {
	if adm.CreatedAt.IsZero() {
		adm.CreatedAt = core.NowFunc().UTC()
	}
	_, err := repo.admins.Insert(ctx, &adm)
	if err != nil {
		return user.Admin{}, writeErr(adminsColl, err, user.ErrNotFound)
	}
	return adm, nil
}

func (repo *userRepository) GetAdminByUsername(ctx context.Context, username string) (user.Admin, error) {
	admins, err := repo.admins.FindBy(ctx, "username", username)
	if err != nil {
		return user.Admin{}, readErr(adminsColl, err, user.ErrNotFound)
	}
	if len(admins) == 0 {
		return user.Admin{}, user.ErrNotFound
	}
	return admins[0], nil
}

func (repo *userRepository) UpdateAdmin(ctx context.Context, adm user.Admin) (user.Admin, error) {
	if err := repo.admins.Replace(ctx, adm.ID, adm); err != nil {
		return user.Admin{}, writeErr(adminsColl, err, user.ErrNotFound)
	}
	return adm, nil
}

// CreateMember stores mbr in the collection of its role with the defaults of new staff:
// pending status, creation time & a password still to change.
func (repo *userRepository) CreateMember(ctx context.Context, mbr user.Member) (user.Member, error) {
	coll, name, ok := repo.members(mbr.Role)
	if !ok {
		return user.Member{}, user.ErrNotFound
	}
	now := core.NowFunc().UTC()
	if mbr.Status == "" {
		mbr.Status = user.StatusPending
	}
	if mbr.CreatedAt.IsZero() {
		mbr.CreatedAt = now
	}
	if mbr.UpdatedAt.IsZero() {
		mbr.UpdatedAt = now
	}
	mbr.PasswordChanged = false

	if _, err := coll.Insert(ctx, &mbr); err != nil {
		return user.Member{}, writeErr(name, err, user.ErrNotFound)
	}
	return mbr, nil
}

func (repo *userRepository) QueryAllMembers(ctx context.Context, role string) ([]user.Member, error) {
	coll, name, ok := repo.members(role)
	if !ok {
		return []user.Member{}, nil
	}
	members, err := coll.All(ctx)
	if err != nil {
		return nil, readErr(name, err, user.ErrNotFound)
	}
	return members, nil
}

func (repo *userRepository) GetMemberByID(ctx context.Context, role, id string) (user.Member, error) {
	coll, name, ok := repo.members(role)
	if !ok {
		return user.Member{}, user.ErrNotFound
	}
	mbr, err := coll.Get(ctx, id)
	if err != nil {
		return user.Member{}, readErr(name, err, user.ErrNotFound)
	}
	return mbr, nil
}

func (repo *userRepository) GetMemberByUsername(ctx context.Context, role, username string) (user.Member, error) {
	coll, name, ok := repo.members(role)
	if !ok {
		return user.Member{}, user.ErrNotFound
	}
	members, err := coll.FindBy(ctx, "username", username)
	if err != nil {
		return user.Member{}, readErr(name, err, user.ErrNotFound)
	}
	if len(members) == 0 {
		return user.Member{}, user.ErrNotFound
	}
	return members[0], nil
}

func (repo *userRepository) UpdateMember(ctx context.Context, mbr user.Member) (user.Member, error) {
	coll, name, ok := repo.members(mbr.Role)
	if !ok {
		return user.Member{}, user.ErrNotFound
	}
	if err := coll.Replace(ctx, mbr.ID, mbr); err != nil {
		return user.Member{}, writeErr(name, err, user.ErrNotFound)
	}
	return mbr, nil
}

func (repo *userRepository) DeleteMember(ctx context.Context, role, id string) error {
	coll, name, ok := repo.members(role)
	if !ok {
		return user.ErrNotFound
	}
	return writeErr(name, coll.Delete(ctx, id), user.ErrNotFound)
}
