package domain

import "time"

type Task struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	ListID    string    `json:"_listId"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskPatch contiene los campos modificables de una tarea; ListID es inmutable.
type TaskPatch struct {
	Title     *string
	Completed *bool
}
