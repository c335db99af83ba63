package chat

import "time"

// Action is one takeoff change requested by the chat assistant. The set of
// implementations is closed: UpdateTakeoff, AddTakeoff and Unknown.
type Action interface {
	kind() string
}

// UpdateTakeoff edits one field of the first item whose description contains
// Description.
type UpdateTakeoff struct {
	Description string
	Field       string
	Value       string
}

// AddTakeoff appends a new assistant-sourced item.
type AddTakeoff struct {
	DivisionCode string
	Description  string
	Quantity     float64
	Unit         string
	UnitCost     float64
	Modifier     float64
	Comment      string
}

// Unknown carries an action kind this client does not understand.
type Unknown struct {
	Type string
}

func (UpdateTakeoff) kind() string { return "updateTakeoff" }
func (AddTakeoff) kind() string    { return "addTakeoff" }
func (u Unknown) kind() string     { return u.Type }

// Kind returns the wire name of an action.
func Kind(a Action) string {
	return a.kind()
}

// Sender identifies the author of a discussion message.
type Sender string

const (
	SenderUser Sender = "User"
	SenderGPT  Sender = "GPT"
)

// Message is an entry in a project's discussion.
type Message struct {
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// TimestampLayout is the display format of message timestamps.
const TimestampLayout = "15:04:05"

// NewMessage stamps a message with the local time of day.
func NewMessage(sender Sender, text string, now time.Time) Message {
	return Message{Sender: sender, Text: text, Timestamp: now.Format(TimestampLayout)}
}

// Outcome reports how a batch of actions was applied.
type Outcome struct {
	Applied int      `json:"applied"`
	Skipped []string `json:"skipped,omitempty"`
}

// Total returns the number of actions considered.
func (o Outcome) Total() int {
	return o.Applied + len(o.Skipped)
}
