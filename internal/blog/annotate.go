package blog

import "gorm.io/gorm"

const commentCountColumn = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// Annotate attaches CommentCount, preloads Author, Category and Location, and orders
// newest publication first. Rows sharing a pub_date keep insertion order.
// It composes with Published in either order.
func Annotate(db *gorm.DB) *gorm.DB {
	return db.
		Select("posts.*, " + commentCountColumn).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Order("posts.pub_date DESC").
		Order("posts.id ASC")
}
