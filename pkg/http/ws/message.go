package ws

import "encoding/json"

// MessageType constants for the WebSocket protocol.
const (
	// Client -> Server
	TypePing = "ping"

	// Server -> Client
	TypeLeaderboardSnapshot = "leaderboard_snapshot"
	TypeLeaderboardUpdate   = "leaderboard_update"
	TypeError               = "error"
	TypePong                = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage encodes payload into a message of the given type.
func NewMessage(typ string, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: typ, Payload: raw}, nil
}

// LeaderboardPayload carries the current ranking of one quiz. UserID and
// Score are set on updates and name the submission that caused them.
type LeaderboardPayload struct {
	QuizID string             `json:"quiz_id"`
	Top    []LeaderboardEntry `json:"top"`
	UserID string             `json:"user_id,omitempty"`
	Score  *float64           `json:"score,omitempty"`
}

type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	UserID   string  `json:"user_id"`
	UserName string  `json:"user_name"`
	Score    float64 `json:"score"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
