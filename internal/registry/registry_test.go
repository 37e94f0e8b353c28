package registry

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mpruett/chatrelay/internal/database"
	"github.com/mpruett/chatrelay/internal/testutil"
	"github.com/mpruett/chatrelay/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateRoom(t *testing.T) {
	t.Run("creates room and records creator", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		db.On("RoomExists", mock.AnythingOfType("string")).Return(false, nil).Once()
		db.On("CreateRoom", mock.MatchedBy(func(code string) bool {
			return codePattern.MatchString(code)
		}), "Ada").Return(database.Room{Code: "AB12XY", Creator: "Ada"}, nil).Once()
		db.On("AddParticipant", "AB12XY", "Ada").Return(database.Participant{
			Id:       1,
			RoomCode: "AB12XY",
			Name:     "Ada",
		}, nil).Once()

		reg := NewRegistry(testutil.TestLogger(t), db)
		code, err := reg.CreateRoom("Ada")
		assert.NoError(t, err, "expected no error creating room")
		assert.Equal(t, "AB12XY", code, "expected the stored room code to be returned")
	})

	t.Run("empty creator name", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		reg := NewRegistry(testutil.TestLogger(t), db)
		_, err := reg.CreateRoom("")
		assert.ErrorIs(t, err, ErrInvalidInput, "expected ErrInvalidInput for empty creator")
		db.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
	})

	t.Run("store failure during allocation", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		db.On("RoomExists", mock.AnythingOfType("string")).Return(false, errors.New("db error")).Once()

		reg := NewRegistry(testutil.TestLogger(t), db)
		_, err := reg.CreateRoom("Ada")
		assert.Error(t, err, "expected store error to surface")
		db.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
	})

	t.Run("store failure during insert", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		db.On("RoomExists", mock.AnythingOfType("string")).Return(false, nil).Once()
		db.On("CreateRoom", mock.AnythingOfType("string"), "Ada").
			Return(database.Room{}, errors.New("db error")).Once()

		reg := NewRegistry(testutil.TestLogger(t), db)
		_, err := reg.CreateRoom("Ada")
		assert.Error(t, err, "expected store error to surface")
		db.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything)
	})
}

func TestJoinRoom(t *testing.T) {
	t.Run("appends participant row", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "AB12XY").Return(database.Room{Code: "AB12XY", Creator: "Ada"}, nil).Once()
		db.On("AddParticipant", "AB12XY", "Lin").Return(database.Participant{
			Id:       2,
			RoomCode: "AB12XY",
			Name:     "Lin",
		}, nil).Once()

		reg := NewRegistry(testutil.TestLogger(t), db)
		err := reg.JoinRoom("Lin", "AB12XY")
		assert.NoError(t, err, "expected join to succeed")
	})

	t.Run("repeated joins append rows", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "AB12XY").Return(database.Room{Code: "AB12XY", Creator: "Ada"}, nil).Twice()
		db.On("AddParticipant", "AB12XY", "Lin").Return(database.Participant{RoomCode: "AB12XY", Name: "Lin"}, nil).Twice()

		reg := NewRegistry(testutil.TestLogger(t), db)
		assert.NoError(t, reg.JoinRoom("Lin", "AB12XY"), "expected first join to succeed")
		assert.NoError(t, reg.JoinRoom("Lin", "AB12XY"), "expected repeat join to succeed")
		db.AssertNumberOfCalls(t, "AddParticipant", 2)
	})

	t.Run("unknown room", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "NOPE42").Return(database.Room{}, sql.ErrNoRows).Once()

		reg := NewRegistry(testutil.TestLogger(t), db)
		err := reg.JoinRoom("Lin", "NOPE42")
		assert.ErrorIs(t, err, ErrRoomNotFound, "expected ErrRoomNotFound for unknown code")
		db.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything)
	})

	t.Run("missing fields", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		reg := NewRegistry(testutil.TestLogger(t), db)
		assert.ErrorIs(t, reg.JoinRoom("", "AB12XY"), ErrInvalidInput, "expected ErrInvalidInput for empty name")
		assert.ErrorIs(t, reg.JoinRoom("Lin", ""), ErrInvalidInput, "expected ErrInvalidInput for empty code")
		db.AssertNotCalled(t, "GetRoom", mock.Anything)
	})
}

func TestRoomInfo(t *testing.T) {
	t.Run("returns creator", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "AB12XY").Return(database.Room{
			Code:      "AB12XY",
			Creator:   "Ada",
			CreatedAt: time.Now().UTC(),
		}, nil).Once()

		reg := NewRegistry(testutil.TestLogger(t), db)
		room, err := reg.RoomInfo("AB12XY")
		assert.NoError(t, err, "expected no error fetching room info")
		assert.Equal(t, types.Room{Code: "AB12XY", Creator: "Ada"}, room, "expected room info to match")
	})

	t.Run("unknown room", func(t *testing.T) {
		db := &database.MockChatRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "NOPE42").Return(database.Room{}, sql.ErrNoRows).Once()

		reg := NewRegistry(testutil.TestLogger(t), db)
		_, err := reg.RoomInfo("NOPE42")
		assert.ErrorIs(t, err, ErrRoomNotFound, "expected ErrRoomNotFound for unknown code")
	})
}

func TestParticipants(t *testing.T) {
	db := &database.MockChatRepository{}
	defer db.AssertExpectations(t)

	db.On("ListParticipants", "AB12XY").Return([]database.Participant{
		{Id: 1, RoomCode: "AB12XY", Name: "Ada"},
		{Id: 2, RoomCode: "AB12XY", Name: "Lin"},
		{Id: 3, RoomCode: "AB12XY", Name: "Lin"},
	}, nil).Once()

	reg := NewRegistry(testutil.TestLogger(t), db)
	participants, err := reg.Participants("AB12XY")
	assert.NoError(t, err, "expected no error listing participants")
	assert.Equal(t, []types.Participant{
		{RoomCode: "AB12XY", Name: "Ada"},
		{RoomCode: "AB12XY", Name: "Lin"},
		{RoomCode: "AB12XY", Name: "Lin"},
	}, participants, "expected the append-only log in insertion order")
}
