package models

import (
	"time"
	"unicode/utf8"
)

// displayLength caps the length of titles used as short labels (admin listings, page titles).
const displayLength = 30

// Post is a blog entry. A post with a future PubDate is scheduled and stays hidden from
// everyone but its author until that moment.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"not null;index" json:"pub_date"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	Image       string    `gorm:"size:255" json:"image,omitempty"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
	CategoryID  *uint     `gorm:"index" json:"category_id,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	LocationID  *uint     `gorm:"index" json:"location_id,omitempty"`
	Location    *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	// CommentCount is not persisted; computed at query time
	CommentCount int       `gorm:"->" json:"comment_count"`
	Comments     []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// String implements fmt.Stringer.
func (p Post) String() string {
	return truncate(p.Title)
}

// IsScheduled reports whether the post's publication time is still ahead of now.
func (p Post) IsScheduled(now time.Time) bool {
	return p.PubDate.After(now)
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= displayLength {
		return s
	}
	return string([]rune(s)[:displayLength])
}
