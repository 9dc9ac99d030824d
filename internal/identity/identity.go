// Package identity derives canonical identifiers for a pair of participants.
//
// Both the store key and the realtime channel sort the two user ids before
// joining them, so either participant arrives at the same identifier no matter
// who initiated contact.
package identity

// ConversationKeyPrefix namespaces conversation hashes in the store.
const ConversationKeyPrefix = "conversation:"

// channelSeparator joins the sorted pair into a channel name.
const channelSeparator = "__"

// ConversationID returns the canonical conversation key for a pair of users.
// ConversationID(a, b) == ConversationID(b, a) for all a, b.
func ConversationID(userA, userB string) string {
	a, b := sortPair(userA, userB)
	return ConversationKeyPrefix + a + ":" + b
}

// MessagesKey returns the sorted-set key holding a conversation's message
// index.
func MessagesKey(conversationID string) string {
	return conversationID + ":messages"
}

// Channel returns the realtime channel name for a pair of users, derived with
// the same commutative construction as ConversationID.
func Channel(userA, userB string) string {
	a, b := sortPair(userA, userB)
	return a + channelSeparator + b
}

// UserKey returns the key of a user's profile hash.
func UserKey(userID string) string {
	return "user:" + userID
}

// UserConversationsKey returns the key of a user's conversation set.
func UserConversationsKey(userID string) string {
	return "user:" + userID + ":conversations"
}

func sortPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
