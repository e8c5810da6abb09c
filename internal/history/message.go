package history

import "time"

// Role is the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// FileRef describes an attachment shown next to a user message. The payload
// itself is not persisted.
type FileRef struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	URL      string `json:"url,omitempty"`
}

// Message is one chat message. Messages are appended during a turn and never
// edited afterwards.
type Message struct {
	Role  Role      `json:"role"`
	Text  string    `json:"text"`
	Files []FileRef `json:"files,omitempty"`
}

// Conversation is a titled list of messages with the mode and persona it was
// last used with.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Mode      string    `json:"mode"`
	Persona   string    `json:"persona"`
	Timestamp time.Time `json:"timestamp"`
}

// Clone returns a deep copy so callers can't mutate stored state.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		out.Messages[i] = m
		if m.Files != nil {
			out.Messages[i].Files = append([]FileRef(nil), m.Files...)
		}
	}
	return out
}
