package database

import "time"

type Room struct {
	Code      string
	Creator   string
	CreatedAt time.Time
}

type Participant struct {
	Id       int
	RoomCode string
	Name     string
	JoinedAt time.Time
}

type Message struct {
	Id        int
	RoomCode  string
	Name      string
	Body      string
	CreatedAt time.Time
}
