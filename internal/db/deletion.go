package db

import (
	"fmt"

	"gorm.io/gorm"
)

// OnDelete describes what happens to a referencing row when its parent is deleted.
type OnDelete int

const (
	// Cascade deletes the referencing row as well.
	Cascade OnDelete = iota
	// SetNull clears the foreign key and keeps the referencing row.
	SetNull
)

func (a OnDelete) String() string {
	if a == SetNull {
		return "SET NULL"
	}
	return "CASCADE"
}

// ForeignKey is one row of the deletion policy table.
type ForeignKey struct {
	Child  string
	Column string
	Parent string
	Action OnDelete
}

// DeletionPolicy is the authoritative cascade / nullify table. The gorm
// constraint tags on the models mirror it for the sqlite schema.
var DeletionPolicy = []ForeignKey{
	{Child: "posts", Column: "author_id", Parent: "users", Action: Cascade},
	{Child: "posts", Column: "location_id", Parent: "locations", Action: SetNull},
	{Child: "posts", Column: "category_id", Parent: "categories", Action: SetNull},
	{Child: "comments", Column: "author_id", Parent: "users", Action: Cascade},
	{Child: "comments", Column: "post_id", Parent: "posts", Action: Cascade},
}

// DeleteRows deletes rows of table by primary key inside one transaction,
// applying DeletionPolicy to every dependant first.
func DeleteRows(gdb *gorm.DB, table string, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return gdb.Transaction(func(tx *gorm.DB) error {
		return deleteRows(tx, table, ids)
	})
}

func deleteRows(tx *gorm.DB, table string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	for _, fk := range DeletionPolicy {
		if fk.Parent != table {
			continue
		}

		switch fk.Action {
		case SetNull:
			if err := tx.Table(fk.Child).
				Where(fmt.Sprintf("%s IN ?", fk.Column), ids).
				Update(fk.Column, nil).Error; err != nil {
				return fmt.Errorf("nullify %s.%s: %w", fk.Child, fk.Column, err)
			}
		case Cascade:
			var childIDs []uint
			if err := tx.Table(fk.Child).
				Where(fmt.Sprintf("%s IN ?", fk.Column), ids).
				Pluck("id", &childIDs).Error; err != nil {
				return fmt.Errorf("collect %s by %s: %w", fk.Child, fk.Column, err)
			}
			if err := deleteRows(tx, fk.Child, childIDs); err != nil {
				return err
			}
		}
	}

	if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IN ?", table), ids).Error; err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}
