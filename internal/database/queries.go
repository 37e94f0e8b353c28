package database

import (
	"time"
)

func (db *PgChatRepository) CreateRoom(code, creator string) (Room, error) {
	res := db.conn.QueryRow(
		"INSERT INTO rooms (code, creator, created_at) "+
			"VALUES ($1, $2, $3) RETURNING code, creator, created_at",
		code,
		creator,
		time.Now().UTC(),
	)

	var room Room
	err := res.Scan(
		&room.Code,
		&room.Creator,
		&room.CreatedAt,
	)

	return room, err
}

func (db *PgChatRepository) GetRoom(code string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT code, creator, created_at FROM rooms "+
			"WHERE code = $1 LIMIT 1",
		code,
	)

	var room Room
	err := row.Scan(
		&room.Code,
		&room.Creator,
		&room.CreatedAt,
	)

	return room, err
}

func (db *PgChatRepository) RoomExists(code string) (bool, error) {
	var exists bool
	err := db.conn.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM rooms WHERE code = $1)",
		code,
	).Scan(&exists)

	return exists, err
}

// AddParticipant appends a row to the join log. Repeated joins by the
// same name create additional rows; the log is never pruned.
func (db *PgChatRepository) AddParticipant(roomCode, name string) (Participant, error) {
	res := db.conn.QueryRow(
		"INSERT INTO participants (room_code, name, joined_at) "+
			"VALUES ($1, $2, $3) RETURNING id, room_code, name, joined_at",
		roomCode,
		name,
		time.Now().UTC(),
	)

	var p Participant
	err := res.Scan(
		&p.Id,
		&p.RoomCode,
		&p.Name,
		&p.JoinedAt,
	)

	return p, err
}

func (db *PgChatRepository) ListParticipants(roomCode string) ([]Participant, error) {
	rows, err := db.conn.Query(
		"SELECT id, room_code, name, joined_at FROM participants "+
			"WHERE room_code = $1 ORDER BY id ASC",
		roomCode,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants = make([]Participant, 0)
	for rows.Next() {
		var p Participant
		if err = rows.Scan(&p.Id, &p.RoomCode, &p.Name, &p.JoinedAt); err != nil {
			break
		}

		participants = append(participants, p)
	}

	return participants, err
}

// CreateMessage inserts a message and returns the stored row with the
// id the store assigned. Insert order of ids is the canonical replay
// order for the room.
func (db *PgChatRepository) CreateMessage(roomCode, name, body string) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (room_code, name, body, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, room_code, name, body, created_at",
		roomCode,
		name,
		body,
		time.Now().UTC().Truncate(time.Second),
	)

	var msg Message
	err := res.Scan(
		&msg.Id,
		&msg.RoomCode,
		&msg.Name,
		&msg.Body,
		&msg.CreatedAt,
	)

	return msg, err
}

func (db *PgChatRepository) GetMessages(roomCode string) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT id, room_code, name, body, created_at FROM messages "+
			"WHERE room_code = $1 ORDER BY id ASC",
		roomCode,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = make([]Message, 0)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.Id, &msg.RoomCode, &msg.Name, &msg.Body, &msg.CreatedAt); err != nil {
			break
		}

		messages = append(messages, msg)
	}

	return messages, err
}
