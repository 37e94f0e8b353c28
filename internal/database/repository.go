package database

type ChatRepository interface {
	Ping() error
	CreateRoom(code, creator string) (Room, error)
	GetRoom(code string) (Room, error)
	RoomExists(code string) (bool, error)
	AddParticipant(roomCode, name string) (Participant, error)
	ListParticipants(roomCode string) ([]Participant, error)
	CreateMessage(roomCode, name, body string) (Message, error)
	GetMessages(roomCode string) ([]Message, error)
}
