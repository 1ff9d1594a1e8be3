package rag

import (
	"sync"

	"github.com/AdvisorAI/advisor-mvp/pkg/llm"
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered, append-only chat history. Safe for
// concurrent use; one lives per session.
type Conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a turn.
func (c *Conversation) Append(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{Role: role, Content: content})
}

// AppendExchange records one user question and its answer atomically.
func (c *Conversation) AppendExchange(question, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns,
		Turn{Role: llm.RoleUser, Content: question},
		Turn{Role: llm.RoleAssistant, Content: answer})
}

// Len reports the number of turns.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Turns returns a copy of the whole history.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Window returns a copy of the most recent n turns. n <= 0 means none.
func (c *Conversation) Window(n int) []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 {
		return nil
	}
	start := len(c.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(c.turns)-start)
	copy(out, c.turns[start:])
	return out
}

// Reset discards the history.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}
