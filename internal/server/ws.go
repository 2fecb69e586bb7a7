package server

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/coder/websocket"
)

// clientMessage is one request frame from the WebSocket client. Type selects
// the operation; ID is echoed back so clients can correlate replies.
type clientMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// command
	Text string `json:"text,omitempty"`

	// audio: base64-encoded little-endian float32 PCM at 16 kHz mono
	Audio string `json:"audio,omitempty"`

	// history
	Limit int `json:"limit,omitempty"`
}

// serverMessage is one reply frame. Exactly one payload field is set,
// matching Type.
type serverMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	Outcome     any        `json:"outcome,omitempty"`
	Suggestions any        `json:"suggestions,omitempty"`
	Stats       any        `json:"stats,omitempty"`
	Entries     any        `json:"entries,omitempty"`
	Busy        *bool      `json:"busy,omitempty"`
	Error       *errorBody `json:"error,omitempty"`
}

// handleWS upgrades the connection and serves request frames until the client
// disconnects. Commands run synchronously: the agent serialises pipeline runs
// anyway, and a frame's reply always precedes the next frame's.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket accept failed", "err", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	s.log.Debug("websocket client connected", "remote", r.RemoteAddr)
	ctx := r.Context()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			s.log.Debug("websocket read error", "err", err)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(ctx, conn, serverMessage{
				Type:  "error",
				Error: &errorBody{Code: "bad_request", Message: "invalid JSON frame"},
			})
			continue
		}

		s.reply(ctx, conn, s.dispatch(ctx, msg))
	}
}

// dispatch executes one client frame and builds its reply.
func (s *Server) dispatch(ctx context.Context, msg clientMessage) serverMessage {
	switch msg.Type {
	case "command":
		if msg.Text == "" {
			return errorMessage(msg.ID, "bad_request", "command frame requires text")
		}
		outcome, err := s.pipeline.ProcessText(ctx, msg.Text)
		if err != nil {
			_, code := classifyError(err)
			return errorMessage(msg.ID, code, err.Error())
		}
		return serverMessage{Type: "outcome", ID: msg.ID, Outcome: outcome}

	case "audio":
		samples, err := decodeSamples(msg.Audio)
		if err != nil {
			return errorMessage(msg.ID, "bad_request", err.Error())
		}
		outcome, err := s.pipeline.ProcessAudio(ctx, samples)
		if err != nil {
			_, code := classifyError(err)
			return errorMessage(msg.ID, code, err.Error())
		}
		return serverMessage{Type: "outcome", ID: msg.ID, Outcome: outcome}

	case "suggest":
		actions, err := s.pipeline.Suggest(ctx)
		if err != nil {
			return errorMessage(msg.ID, "internal", err.Error())
		}
		return serverMessage{Type: "suggestions", ID: msg.ID, Suggestions: actions}

	case "stats":
		return serverMessage{Type: "stats", ID: msg.ID, Stats: s.pipeline.Stats()}

	case "history":
		n := msg.Limit
		if n < 1 {
			n = defaultHistory
		}
		n = min(n, maxHistory)
		return serverMessage{Type: "history", ID: msg.ID, Entries: s.pipeline.Recent(n)}

	case "status":
		busy := s.pipeline.Busy()
		return serverMessage{Type: "status", ID: msg.ID, Busy: &busy}

	default:
		return errorMessage(msg.ID, "bad_request", fmt.Sprintf("unknown frame type %q", msg.Type))
	}
}

func (s *Server) reply(ctx context.Context, conn *websocket.Conn, msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Warn("failed to marshal reply", "err", err)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		s.log.Debug("websocket write error", "err", err)
	}
}

func errorMessage(id, code, message string) serverMessage {
	return serverMessage{Type: "error", ID: id, Error: &errorBody{Code: code, Message: message}}
}

// decodeSamples turns a base64 payload of little-endian float32 PCM into
// samples for the transcriber.
func decodeSamples(encoded string) ([]float32, error) {
	if encoded == "" {
		return nil, fmt.Errorf("server: audio frame requires audio data")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("server: decode audio: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("server: audio payload is not float32-aligned")
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples, nil
}
