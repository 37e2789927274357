package blog

// IsOwner reports whether userID authored the object owned by authorID. The anonymous
// user (0) owns nothing.
func IsOwner(userID, authorID uint) bool {
	return userID != 0 && userID == authorID
}
