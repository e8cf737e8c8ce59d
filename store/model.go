package store

// Note is a short title+content record. OwnerID is nil for notes created
// while accounts are disabled.
type Note struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"type:varchar(20);not null" json:"title"`
	Content string `gorm:"type:varchar(300);not null" json:"content"`
	OwnerID *uint  `gorm:"index" json:"owner_id,omitempty"`
}

// OwnedBy reports whether userID owns the note.
func (n *Note) OwnedBy(userID uint) bool {
	return n.OwnerID != nil && *n.OwnerID == userID
}

// Owner returns the owner id, or 0 for an unowned note.
func (n *Note) Owner() uint {
	if n.OwnerID == nil {
		return 0
	}
	return *n.OwnerID
}

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"type:varchar(20);uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash
	Notes    []Note `gorm:"foreignKey:OwnerID" json:"notes,omitempty"`
}

// Models lists every table created at startup.
func Models() []any {
	return []any{&User{}, &Note{}}
}
