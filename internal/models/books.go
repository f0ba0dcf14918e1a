package models

import "time"

// Book is one catalog entry. The catalog shares no data with the identity
// records and is persisted under its own key.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	Rating    int       `json:"rating"`
	Summary   string    `json:"summary"`
	DateRead  string    `json:"dateRead,omitempty"`
	DateAdded time.Time `json:"dateAdded"`
	AddedBy   string    `json:"addedBy,omitempty"`
}
