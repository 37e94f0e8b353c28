package database

import (
	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChatRepository) CreateRoom(code, creator string) (Room, error) {
	args := m.Called(code, creator)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) GetRoom(code string) (Room, error) {
	args := m.Called(code)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) RoomExists(code string) (bool, error) {
	args := m.Called(code)
	return args.Bool(0), args.Error(1)
}
func (m *MockChatRepository) AddParticipant(roomCode, name string) (Participant, error) {
	args := m.Called(roomCode, name)
	return args.Get(0).(Participant), args.Error(1)
}
func (m *MockChatRepository) ListParticipants(roomCode string) ([]Participant, error) {
	args := m.Called(roomCode)
	return args.Get(0).([]Participant), args.Error(1)
}
func (m *MockChatRepository) CreateMessage(roomCode, name, body string) (Message, error) {
	args := m.Called(roomCode, name, body)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) GetMessages(roomCode string) ([]Message, error) {
	args := m.Called(roomCode)
	return args.Get(0).([]Message), args.Error(1)
}
