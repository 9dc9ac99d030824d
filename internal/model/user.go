package model

// User mirrors the profile fields the identity provider supplies. The chat
// core never manages credentials; it only stores the profile for display.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}
