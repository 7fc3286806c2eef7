package llm

// Conversation is the ordered, in-memory history of one chat session.
type Conversation struct {
	messages []Message
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Add appends a message to the history.
func (c *Conversation) Add(msg Message) {
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the history, safe to hand to a request builder.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the history.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// DropLast removes the most recent message, e.g. a user turn whose request
// failed and should not be sent again.
func (c *Conversation) DropLast() {
	if len(c.messages) == 0 {
		return
	}
	c.messages = c.messages[:len(c.messages)-1]
}
