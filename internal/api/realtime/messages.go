package realtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spec-kit/code-arena/internal/presence"
)

var ErrInvalidMessage = errors.New("invalid message")

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type CodeChangeRequest struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

type SyncCodeRequest struct {
	SocketID string `json:"socketId"`
	Code     string `json:"code"`
}

// decodeMessage parses one inbound frame into one of the request types.
func decodeMessage(raw []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if len(env.Data) == 0 {
		env.Data = []byte("{}")
	}

	switch env.Event {
	case presence.EventJoin:
		var req JoinRequest
		if err := unmarshalData(env, &req); err != nil {
			return nil, err
		}
		return req, nil
	case presence.EventCodeChange:
		var req CodeChangeRequest
		if err := unmarshalData(env, &req); err != nil {
			return nil, err
		}
		return req, nil
	case presence.EventSyncCode:
		var req SyncCodeRequest
		if err := unmarshalData(env, &req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, fmt.Errorf("%w: unknown event %q", ErrInvalidMessage, env.Event)
	}
}

func unmarshalData(env envelope, target any) error {
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidMessage, env.Event, err)
	}
	return nil
}
