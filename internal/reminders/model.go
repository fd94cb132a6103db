package reminders

// Reminder is a lightweight, locally-stored health reminder. Reminders live
// outside the document store and survive restarts via a snapshot file.
type Reminder struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Notes     string `json:"notes,omitempty"`
	Completed bool   `json:"completed"`
}
