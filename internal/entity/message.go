package entity

import (
	"encoding/json"
	"fmt"
)

const (
	ActionMove      = "move"
	ActionGameStart = "game_start"
	ActionReset     = "reset"
)

// Message is the envelope exchanged between two peers.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type GameStartPayload struct {
	HostName  string `json:"hostName"`
	YourColor Cell   `json:"yourColor"`
	RoomID    string `json:"roomId"`
}

func NewMoveMessage(move Move) Message {
	return Message{
		Action:  ActionMove,
		Payload: mustMarshal(MovePayload{Row: move.Row, Col: move.Col}),
	}
}

func NewGameStartMessage(hostName string, yourColor Cell, roomID string) Message {
	return Message{
		Action:  ActionGameStart,
		Payload: mustMarshal(GameStartPayload{HostName: hostName, YourColor: yourColor, RoomID: roomID}),
	}
}

func NewResetMessage() Message {
	return Message{Action: ActionReset}
}

func (that Message) DecodeMove() (Move, error) {
	var payload MovePayload
	if err := json.Unmarshal(that.Payload, &payload); err != nil {
		return Move{}, fmt.Errorf("failed to decode move payload: %w", err)
	}

	return Move{Row: payload.Row, Col: payload.Col}, nil
}

func (that Message) DecodeGameStart() (GameStartPayload, error) {
	var payload GameStartPayload
	if err := json.Unmarshal(that.Payload, &payload); err != nil {
		return GameStartPayload{}, fmt.Errorf("failed to decode game start payload: %w", err)
	}

	if !payload.YourColor.IsPlayer() {
		return GameStartPayload{}, fmt.Errorf("invalid color %s in game start payload", payload.YourColor)
	}

	return payload, nil
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return b
}
