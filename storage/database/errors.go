package database

import (
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

// storeErr maps docstore errors to the domain: missing documents become notFound,
// anything else a core.StoreError.
func storeErr(op core.StoreOp, coll string, err, notFound error) error {
	switch err {
	case nil:
		return nil
	case docstore.ErrNotFound, docstore.ErrInvalidID:
		return notFound
	}
	return core.NewStoreError(op, coll, err)
}

func readErr(coll string, err, notFound error) error {
	return storeErr(core.StoreRead, coll, err, notFound)
}

func writeErr(coll string, err, notFound error) error {
	return storeErr(core.StoreWrite, coll, err, notFound)
}
