package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the civil date format entries are keyed by.
const DateLayout = "2006-01-02"

// MaxNoteLength is counted in Unicode code points.
const MaxNoteLength = 200

// MoodEntry is one account's mood for one calendar day. At most one exists
// per (OwnerID, Date).
type MoodEntry struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Date      string    `json:"date"`
	Emojis    []string  `json:"emojis"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	Color     *string   `json:"color,omitempty"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (e MoodEntry) Clone() MoodEntry {
	e.Emojis = append([]string(nil), e.Emojis...)
	e.ImageURL = cloneString(e.ImageURL)
	e.Color = cloneString(e.Color)
	e.Note = cloneString(e.Note)
	return e
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
