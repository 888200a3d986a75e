package models

import "time"

// Stage представляет тур (игровой день) лиги.
type Stage struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Date      time.Time `json:"date" db:"date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StageRef is the short form of a stage embedded into matches.
type StageRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
