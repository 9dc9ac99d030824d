package model

// Conversation pairs two participants. Created lazily on first contact, never
// mutated or deleted afterwards. Participant order carries no meaning.
type Conversation struct {
	ID           string `json:"id"`
	Participant1 string `json:"participant1"`
	Participant2 string `json:"participant2"`
}

// Peer returns the other participant from userID's perspective.
func (c *Conversation) Peer(userID string) string {
	if c.Participant1 == userID {
		return c.Participant2
	}
	return c.Participant1
}

// ListConversationsResponse is the response for listing a user's conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}
