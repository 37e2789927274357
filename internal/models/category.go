package models

import "time"

// Category groups posts under a URL slug. Unpublished categories hide their posts.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Slug        string    `gorm:"size:64;not null;uniqueIndex" json:"slug"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []Post    `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"posts,omitempty"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return truncate(c.Title)
}
