package entity

import "time"

// Room is the signaling record a host publishes so a guest can find it by code.
type Room struct {
	ID        string    `json:"id"`
	HostName  string    `json:"host_name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
