package models

import "fmt"

// Message is a single-recipient mail. Sender and Recipient are always fully
// resolved users when read back from a store.
type Message struct {
	ID        int64  `json:"id"`
	Subject   string `json:"subject"`
	Body      string `json:"message"`
	Sender    *User  `json:"fromUser"`
	Recipient *User  `json:"toUser"`
}

// Equal compares messages by id with the same rules as User.Equal.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return false
	}
	if m.ID == 0 || other.ID == 0 {
		return false
	}
	return m.ID == other.ID
}

func (m *Message) String() string {
	if m == nil {
		return "Message[nil]"
	}
	return fmt.Sprintf("Message[id=%d]", m.ID)
}
