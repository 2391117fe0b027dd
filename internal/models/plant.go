package models

import "time"

type Plant struct {
	ID            string
	UserID        string
	Name          string
	Species       string
	Description   string
	LastWateredAt *time.Time
	PhotoURL      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
