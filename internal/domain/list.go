package domain

import "time"

type List struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	UserID    string    `json:"_userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListPatch contiene los campos modificables de una lista.
type ListPatch struct {
	Title *string
}
