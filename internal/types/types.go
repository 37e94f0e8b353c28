package types

import "time"

// SystemSender is the display name attached to join/leave notices.
const SystemSender = "System"

// FormatTimestamp renders a persistence timestamp for direct display,
// matching the HH:MM:SS form clients show next to each message.
func FormatTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

type Room struct {
	Code    string `json:"room_code"`
	Creator string `json:"creator"`
}

type Participant struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

// Message is the wire form of a chat message or system notice. The
// timestamp is preformatted for direct display (HH:MM:SS).
type Message struct {
	Name      string `json:"name"`
	Text      string `json:"msg"`
	Timestamp string `json:"timestamp,omitempty"`
}
