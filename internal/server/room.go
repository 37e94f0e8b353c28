package server

import (
	"log"
	"sync"
	"time"

	"github.com/mpruett/chatrelay/internal/database"
	"github.com/mpruett/chatrelay/internal/stats"
	"github.com/mpruett/chatrelay/internal/types"
)

// idleRoomTimeout is how long a room actor with no subscribers stays
// loaded. Unloading drops only in-process state; the room row in the
// store is permanent.
const idleRoomTimeout = time.Minute * 5

type exitReq struct {
	done chan string
}

// Room is the in-memory fan-out group for one room code. Its clients
// set is the live broadcast subscription state; durable membership
// lives in the participant log, which this actor never touches.
type Room struct {
	code       string
	cs         *ChatServer
	db         database.ChatRepository
	joinChan   chan *ClientMessage
	leaveChan  chan *ClientMessage
	sendChan   chan *ClientMessage
	clients    map[*Client]struct{}
	clientLock sync.RWMutex
	log        *log.Logger
	// killTimer unloads the room actor when no clients remain
	killTimer *time.Timer
	exit      chan exitReq
}

func newRoom(code string, cs *ChatServer) *Room {
	return &Room{
		code:      code,
		cs:        cs,
		db:        cs.db,
		joinChan:  make(chan *ClientMessage, 256),
		leaveChan: make(chan *ClientMessage, 256),
		sendChan:  make(chan *ClientMessage, 256),
		clients:   make(map[*Client]struct{}),
		log:       cs.log,
		exit:      make(chan exitReq),
	}
}

func (r *Room) start() {
	r.log.Printf("starting room %q", r.code)
	r.killTimer = time.NewTimer(idleRoomTimeout)

	for {
		select {
		case join := <-r.joinChan:
			r.handleJoin(join)
		case leaveMsg := <-r.leaveChan:
			r.handleLeave(leaveMsg)
		case msg := <-r.sendChan:
			r.saveAndBroadcast(msg)
		case <-r.killTimer.C:
			r.handleRoomTimeout()
		case e := <-r.exit:
			r.handleRoomExit(e)
			return
		}
	}
}

func (r *Room) handleRoomTimeout() {
	r.log.Printf("room %q idle, unloading", r.code)
	select {
	case r.cs.unloadRoomChan <- r.code:
	default:
		// unload queue full, try again after another idle period
		r.killTimer.Reset(idleRoomTimeout)
	}
}

func (r *Room) handleRoomExit(e exitReq) {
	r.log.Printf("room %q is exiting", r.code)

	r.clientLock.Lock()
	for c := range r.clients {
		c.delRoom(r.code)
	}
	clear(r.clients)
	r.clientLock.Unlock()

	if e.done != nil {
		e.done <- r.code
	}
}

// handleJoin subscribes the client and announces the join to every
// subscriber, the joiner included. The notice is ephemeral: nothing
// is written to the store here.
func (r *Room) handleJoin(join *ClientMessage) {
	r.killTimer.Stop()

	c := join.client
	r.addClient(c)

	r.broadcast(SystemNotice(join.Join.Name + " joined the room"))
}

// handleLeave unsubscribes the client and announces the departure.
// The participant log keeps the join rows; leaving is invisible to
// the store.
func (r *Room) handleLeave(leaveMsg *ClientMessage) {
	c := leaveMsg.client
	r.removeClient(c)

	r.broadcast(SystemNotice(leaveMsg.Leave.Name + " left the room"))
}

// saveAndBroadcast persists the message, then fans it out. The store
// write happens-before the broadcast: on a store failure the sender
// gets an error response and no subscriber sees the message.
func (r *Room) saveAndBroadcast(msg *ClientMessage) {
	stored, err := r.db.CreateMessage(r.code, msg.SendMessage.Name, msg.SendMessage.Message)
	if err != nil {
		r.log.Printf("error saving message in room %q: %v", r.code, err)
		msg.client.queueMessage(ErrInternalError(msg.Id))
		return
	}

	msg.client.queueMessage(NoErrAccepted(msg.Id))
	r.cs.stats.Incr(stats.MessagesRelayed)

	r.broadcast(&ServerMessage{
		BaseMessage: BaseMessage{
			Id:        msg.Id,
			Timestamp: stored.CreatedAt,
		},
		Message: &types.Message{
			Name:      stored.Name,
			Text:      stored.Body,
			Timestamp: types.FormatTimestamp(stored.CreatedAt),
		},
	})
}

func (r *Room) addClient(c *Client) {
	r.clientLock.Lock()
	defer r.clientLock.Unlock()

	r.clients[c] = struct{}{}
	c.addRoom(r)
}

func (r *Room) removeClient(c *Client) {
	r.clientLock.Lock()
	defer r.clientLock.Unlock()

	if _, ok := r.clients[c]; !ok {
		r.log.Printf("client %q not found in room %q", c.name, r.code)
		return
	}

	delete(r.clients, c)
	c.delRoom(r.code)

	if len(r.clients) == 0 {
		r.log.Printf("no clients in %q, starting kill timer", r.code)
		r.killTimer.Reset(idleRoomTimeout)
	}
}

// broadcast delivers msg to every subscribed client. Delivery is a
// non-blocking send per client: a full or dead connection loses this
// frame without holding up the rest of the room.
func (r *Room) broadcast(msg *ServerMessage) {
	r.clientLock.RLock()
	defer r.clientLock.RUnlock()

	for client := range r.clients {
		if !client.queueMessage(msg) {
			r.log.Printf("dropped frame for %q in room %q", client.name, r.code)
		}
	}
}
