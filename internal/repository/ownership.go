package repository

import "fmt"

// Owned identifies a single row by its id and its owner.
// Every read and delete of an owned row goes through this filter so the two
// paths cannot disagree about who may see a row.
type Owned struct {
	ID      int64
	OwnerID int64
}

// OwnedBy scopes a lookup of id to ownerID.
func OwnedBy(id, ownerID int64) Owned {
	return Owned{ID: id, OwnerID: ownerID}
}

// where renders the filter starting at placeholder $first.
func (o Owned) where(first int) (string, []any) {
	return fmt.Sprintf("id = $%d AND owner_id = $%d", first, first+1), []any{o.ID, o.OwnerID}
}
