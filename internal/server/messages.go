package server

import (
	"net/http"
	"time"

	"github.com/mpruett/chatrelay/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ClientMessage is an inbound connection event. Exactly one of Join,
// SendMessage or Leave is set. Names are self-asserted strings; the
// relay does not verify them.
type ClientMessage struct {
	BaseMessage
	Join        *Join        `json:"join,omitempty"`
	SendMessage *SendMessage `json:"send_message,omitempty"`
	Leave       *Leave       `json:"leave,omitempty"`
	client      *Client
}

type Join struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

type SendMessage struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}

type Leave struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

// ServerMessage is an outbound frame: either a relayed chat message /
// system notice or a response to the sender's own request.
type ServerMessage struct {
	BaseMessage
	Message  *types.Message `json:"message,omitempty"`
	Response *Response      `json:"response,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
}

// SystemNotice builds an ephemeral join/leave notice. Notices carry
// no timestamp and are never persisted.
func SystemNotice(text string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Message: &types.Message{
			Name: types.SystemSender,
			Text: text,
		},
	}
}

func NoErrAccepted(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusAccepted,
		},
	}
}

func ErrRoomNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "room not found",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrServiceUnavailable(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusServiceUnavailable,
			Error:        "service unavailable",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
