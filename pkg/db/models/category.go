package models

// Category is shared reference data. ParentID forms a tree.
type Category struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"column:name;not null"`
	ParentID *int64 `gorm:"column:parent_id"`
}
