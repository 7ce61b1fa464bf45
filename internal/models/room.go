package models

import "time"

type Room struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Capacity    int    `json:"capacity" yaml:"capacity"`
	Description string `json:"description,omitempty" yaml:"description"`
	IsActive    bool   `json:"isActive" yaml:"is_active"`
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActiveRooms filters the directory down to rooms a customer may select.
func ActiveRooms(rooms []Room) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out
}
