package models

import "time"

// Location is an optional place a post can be attached to.
type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []Post    `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL" json:"posts,omitempty"`
}

// TableName specifies the table name for GORM.
func (Location) TableName() string {
	return "locations"
}

// String implements fmt.Stringer.
func (l Location) String() string {
	return truncate(l.Name)
}
