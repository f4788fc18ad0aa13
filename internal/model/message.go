package model

import "time"

// Message is a board post. AuthorName is populated by the list query's
// join; whether it is shown is decided per viewer at render time.
type Message struct {
	ID         int64
	Title      string
	Body       string
	CreatedAt  time.Time
	AuthorID   int64
	AuthorName string
}

// DisplayDate formats the creation time the way the board shows it,
// e.g. "Monday, January 2, 2006, 3:04 PM".
func (m Message) DisplayDate() string {
	return m.CreatedAt.Format("Monday, January 2, 2006, 3:04 PM")
}
