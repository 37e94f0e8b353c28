// Package server is the message broadcast engine: it maps live
// connections to room subscriptions and relays chat messages after
// they are durably stored.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/mpruett/chatrelay/internal/database"
	"github.com/mpruett/chatrelay/internal/stats"
	"github.com/mpruett/chatrelay/internal/types"
)

type ChatServer struct {
	log            *log.Logger
	db             database.ChatRepository
	stats          stats.StatsProvider
	clients        map[*Client]struct{}
	clientsLock    sync.Mutex
	joinChan       chan *ClientMessage
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	unloadRoomChan chan string
	rooms          map[string]*Room
	stop           chan chan struct{}
}

func NewChatServer(logger *log.Logger, db database.ChatRepository, sp stats.StatsProvider) (*ChatServer, error) {
	if db == nil {
		return nil, errors.New("nil repository")
	}

	sp.RegisterMetric(stats.ActiveConnections)
	sp.RegisterMetric(stats.LoadedRooms)
	sp.RegisterMetric(stats.MessagesRelayed)

	return &ChatServer{
		log:            logger,
		db:             db,
		stats:          sp,
		joinChan:       make(chan *ClientMessage, 256),
		clients:        make(map[*Client]struct{}),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		unloadRoomChan: make(chan string, 64),
		rooms:          make(map[string]*Room),
		stop:           make(chan chan struct{}),
	}, nil
}

func (cs *ChatServer) Run() {
	for {
		select {
		case joinMsg := <-cs.joinChan:
			cs.handleJoin(joinMsg)
		case client := <-cs.RegisterChan:
			cs.log.Printf("adding connection for %q", client.name)
			cs.addClient(client)
			cs.stats.Incr(stats.ActiveConnections)
		case client := <-cs.deRegisterChan:
			cs.log.Printf("removing connection for %q", client.name)
			cs.removeClient(client)
			cs.stats.Decr(stats.ActiveConnections)
		case code := <-cs.unloadRoomChan:
			cs.unloadRoom(code)
		case done := <-cs.stop:
			cs.log.Println("shutting down rooms")
			for _, r := range cs.rooms {
				exited := make(chan string)
				r.exit <- exitReq{done: exited}
				<-exited
			}

			close(done)
			return
		}
	}
}

// handleJoin routes a join event to the room's actor, loading it
// first if necessary. Room existence is checked against the store;
// there is no in-process cache of rooms beyond the loaded actors.
func (cs *ChatServer) handleJoin(joinMsg *ClientMessage) {
	room, ok := cs.rooms[joinMsg.Join.RoomCode]
	if !ok {
		if _, err := cs.db.GetRoom(joinMsg.Join.RoomCode); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				joinMsg.client.queueMessage(ErrRoomNotFound(joinMsg.Id))
			} else {
				cs.log.Printf("GetRoom %q: %v", joinMsg.Join.RoomCode, err)
				joinMsg.client.queueMessage(ErrInternalError(joinMsg.Id))
			}
			return
		}

		room = newRoom(joinMsg.Join.RoomCode, cs)
		cs.rooms[room.code] = room
		cs.stats.Incr(stats.LoadedRooms)
		go room.start()
	}

	select {
	case room.joinChan <- joinMsg:
	default:
		cs.log.Printf("join channel full on room %q", room.code)
		joinMsg.client.queueMessage(ErrServiceUnavailable(joinMsg.Id))
	}
}

func (cs *ChatServer) addClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	cs.clients[c] = struct{}{}
}

func (cs *ChatServer) removeClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	delete(cs.clients, c)
}

func (cs *ChatServer) unloadRoom(code string) {
	r, ok := cs.rooms[code]
	if !ok {
		return
	}

	cs.log.Printf("unloading room %q", code)
	delete(cs.rooms, code)
	cs.stats.Decr(stats.LoadedRooms)

	exited := make(chan string)
	r.exit <- exitReq{done: exited}
	<-exited
}

func (cs *ChatServer) RegisterClient(c *Client) {
	cs.RegisterChan <- c
}

// History returns every persisted message for the room in ascending
// id order, ready for client backfill. Unknown codes yield an empty
// slice; existence is deliberately not re-checked here.
func (cs *ChatServer) History(roomCode string) ([]types.Message, error) {
	rows, err := cs.db.GetMessages(roomCode)
	if err != nil {
		return nil, fmt.Errorf("load history for %q: %w", roomCode, err)
	}

	messages := make([]types.Message, len(rows))
	for i, msg := range rows {
		messages[i] = types.Message{
			Name:      msg.Name,
			Text:      msg.Body,
			Timestamp: types.FormatTimestamp(msg.CreatedAt),
		}
	}

	return messages, nil
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.clientsLock.Lock()
	for c := range cs.clients {
		c.stopClient()
	}
	cs.clientsLock.Unlock()

	done := make(chan struct{})

	select {
	case cs.stop <- done:
	case <-ctx.Done():
		return fmt.Errorf("chat server shutdown: %w", ctx.Err())
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("chat server shutdown: %w", ctx.Err())
	}
}
