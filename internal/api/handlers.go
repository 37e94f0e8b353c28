package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/mpruett/chatrelay/internal/registry"
	"github.com/mpruett/chatrelay/internal/server"
	"github.com/mpruett/chatrelay/internal/types"
)

// ChatViewResponse is the data the (external) chat template renders.
type ChatViewResponse struct {
	RoomCode  string `json:"room_code"`
	Creator   string `json:"creator"`
	Name      string `json:"name"`
	IsCreator bool   `json:"is_creator"`
}

type MessagesResponse struct {
	Messages []types.Message `json:"messages"`
}

func (s *RelayApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// redirectHome is the contract for invalid or not-found input on the
// form paths: silently send the user back to the entry point.
func (s *RelayApp) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *RelayApp) setSession(w http.ResponseWriter, sess Session) error {
	token, err := s.createSessionToken(sess, defaultSessionExpiration)
	if err != nil {
		return err
	}

	http.SetCookie(w, createSessionCookie(token, defaultSessionExpiration))
	return nil
}

func (s *RelayApp) createRoom(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectHome(w, r)
		return
	}

	name := r.PostFormValue("name")

	roomCode, err := s.registry.CreateRoom(name)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidInput) {
			s.redirectHome(w, r)
			return
		}

		s.log.Println("create room:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.setSession(w, Session{Name: name, RoomCode: roomCode, IsCreator: true}); err != nil {
		s.log.Println("set session:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.Redirect(w, r, "/chat/"+roomCode, http.StatusSeeOther)
}

func (s *RelayApp) joinRoom(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectHome(w, r)
		return
	}

	name := r.PostFormValue("name")
	roomCode := r.PostFormValue("room_code")

	if err := s.registry.JoinRoom(name, roomCode); err != nil {
		if errors.Is(err, registry.ErrInvalidInput) || errors.Is(err, registry.ErrRoomNotFound) {
			s.redirectHome(w, r)
			return
		}

		s.log.Println("join room:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.setSession(w, Session{Name: name, RoomCode: roomCode}); err != nil {
		s.log.Println("set session:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.Redirect(w, r, "/chat/"+roomCode, http.StatusSeeOther)
}

func (s *RelayApp) chatView(w http.ResponseWriter, r *http.Request) {
	roomCode := r.PathValue("room_code")

	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.redirectHome(w, r)
		return
	}

	room, err := s.registry.RoomInfo(roomCode)
	if err != nil {
		if errors.Is(err, registry.ErrRoomNotFound) {
			s.redirectHome(w, r)
			return
		}

		s.log.Println("room info:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, ChatViewResponse{
		RoomCode:  room.Code,
		Creator:   room.Creator,
		Name:      sess.Name,
		IsCreator: sess.IsCreator && sess.RoomCode == room.Code,
	})
}

// getMessages backfills a client with the room's full history in
// ascending id order. Unknown room codes get an empty list rather
// than an error; existence is not re-validated on this path.
func (s *RelayApp) getMessages(w http.ResponseWriter, r *http.Request) {
	roomCode := r.PathValue("room_code")

	messages, err := s.cs.History(roomCode)
	if err != nil {
		s.log.Println("history:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, MessagesResponse{Messages: messages})
}

func (s *RelayApp) serveWs(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(sess.Name, conn, s.cs, s.log)

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}
