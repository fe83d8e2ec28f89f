package user

// User represents a user account record.
type User struct {
	ID    int64  `json:"id"`    // ID is assigned by the store on creation and never reused
	Name  string `json:"name"`  // Name is the display name of the user
	Email string `json:"email"` // Email is the contact address, checked for presence only
}
