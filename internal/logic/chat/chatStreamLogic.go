package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/manas284/empathy-ai/internal/audio"
	"github.com/manas284/empathy-ai/internal/session"
	"github.com/manas284/empathy-ai/internal/svc"
	"github.com/manas284/empathy-ai/internal/types"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"
)

// Client to server message types.
const (
	MessageTypeText           = "text"
	MessageTypeAudio          = "audio"
	MessageTypeStartListening = "start_listening"
	MessageTypeStopListening  = "stop_listening"
	MessageTypePlaybackEnded  = "playback_ended"
	MessageTypePlaybackError  = "playback_error"
	MessageTypeControl        = "control"
)

// Server to client message types.
const (
	MessageTypeWelcome    = "welcome"
	MessageTypeMessage    = "message"
	MessageTypeState      = "state"
	MessageTypeSpeech     = "speech"
	MessageTypeVisualizer = "visualizer"
	MessageTypeListening  = "listening"
	MessageTypePlayback   = "playback"
	MessageTypeNotice     = "notice"
	MessageTypeError      = "error"
)

// WSMessage is the wire envelope for both directions.
type WSMessage struct {
	Type      string      `json:"type"`
	Content   interface{} `json:"content,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

type wsInbound struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

type textPayload struct {
	Content string `json:"content"`
}

type audioPayload struct {
	Data string `json:"data"` // base64 PCM16LE chunk
}

type startListeningPayload struct {
	MimeType string `json:"mimeType,omitempty"`
}

type playbackPayload struct {
	UtteranceID uint64 `json:"utteranceId"`
	Reason      string `json:"reason,omitempty"`
}

type controlPayload struct {
	Volume           *float64 `json:"volume,omitempty"`
	PlaybackRate     *float64 `json:"playbackRate,omitempty"`
	Voice            *string  `json:"voice,omitempty"`
	ToggleRelaxation bool     `json:"toggleRelaxation,omitempty"`
}

type statePayload struct {
	Stage string `json:"stage"`
	Turn  string `json:"turn"`
}

type speechPayload struct {
	UtteranceID  uint64 `json:"utteranceId"`
	AudioDataURI string `json:"audioDataUri"`
	MIMEType     string `json:"mimeType"`
	Voice        string `json:"voice"`
}

type noticePayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type welcomePayload struct {
	SessionID string              `json:"sessionId"`
	Stage     string              `json:"stage"`
	Turn      string              `json:"turn"`
	Rapport   int                 `json:"rapportLevel"`
	Messages  []types.ChatMessage `json:"messages"`
	Playback  audio.State         `json:"playback"`
}

type ChatStreamLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext

	sess     *session.Session
	playback *audio.PlaybackController
	capture  *audio.CaptureController
	conn     *websocket.Conn

	// serializes all writes on the connection
	wsWriteMutex sync.Mutex
}

func NewChatStreamLogic(ctx context.Context, svcCtx *svc.ServiceContext, sess *session.Session, playback *audio.PlaybackController) *ChatStreamLogic {
	return &ChatStreamLogic{
		Logger:   logx.WithContext(ctx),
		ctx:      ctx,
		svcCtx:   svcCtx,
		sess:     sess,
		playback: playback,
	}
}

// HandleWebSocket runs the chat loop for one connection. The session's events
// are fanned out to the client; client frames drive the orchestrator, the
// playback acknowledgements and the capture bridge.
func (l *ChatStreamLogic) HandleWebSocket(conn *websocket.Conn) {
	defer conn.Close()
	l.conn = conn

	l.capture = audio.NewCaptureController(l.svcCtx.Recognizer(), l.sess.AITurnActive, audio.CaptureEvents{
		OnTranscript: func(text string) { l.runTurn(text) },
		OnBars: func(bars []float64) {
			l.sendMessage(conn, &WSMessage{Type: MessageTypeVisualizer, Content: bars})
		},
		OnError: func(class audio.CaptureErrorClass) {
			l.sendMessage(conn, &WSMessage{
				Type:      MessageTypeError,
				Content:   noticePayload{Code: string(class), Message: class.UserMessage()},
				Timestamp: time.Now().Unix(),
			})
		},
		OnStateChanged: func(listening bool) {
			l.sendMessage(conn, &WSMessage{Type: MessageTypeListening, Content: listening})
		},
	})

	l.playback.SetListener(func(ev audio.PlaybackEvent, utteranceID uint64, reason string) {
		// Started is announced via the session's speech event; only the
		// terminal transitions feed back into the turn state machine.
		switch ev {
		case audio.PlaybackEnded:
			l.sess.PlaybackEnded(utteranceID)
		case audio.PlaybackErrored:
			l.sess.PlaybackErrored(utteranceID, reason)
		}
	})

	l.sess.AttachSink(&wsSink{logic: l, conn: conn})

	defer func() {
		l.capture.Abort()
		l.sess.AttachSink(nil)
		l.playback.SetListener(nil)
		l.playback.Stop()
	}()

	l.sendWelcome(conn)

	// Greeting speech starts once the transport that can play it exists.
	go l.sess.SpeakGreeting(l.ctx)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logx.Errorf("WebSocket error: %v", err)
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			var msg wsInbound
			if err := json.Unmarshal(data, &msg); err != nil {
				l.sendError(conn, "bad_message", "Invalid JSON message: "+err.Error())
				continue
			}
			l.handleMessage(conn, &msg)

		case websocket.BinaryMessage:
			// Raw microphone PCM while listening.
			l.capture.Feed(data)
		}
	}
}

func (l *ChatStreamLogic) handleMessage(conn *websocket.Conn, msg *wsInbound) {
	switch msg.Type {
	case MessageTypeText:
		var p textPayload
		if err := json.Unmarshal(msg.Content, &p); err != nil {
			l.sendError(conn, "bad_message", "Invalid text payload")
			return
		}
		l.runTurn(p.Content)

	case MessageTypeAudio:
		var p audioPayload
		if err := json.Unmarshal(msg.Content, &p); err != nil {
			l.sendError(conn, "bad_message", "Invalid audio payload")
			return
		}
		chunk, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			l.sendError(conn, "bad_message", "Invalid audio encoding")
			return
		}
		l.capture.Feed(chunk)

	case MessageTypeStartListening:
		var p startListeningPayload
		if len(msg.Content) > 0 {
			if err := json.Unmarshal(msg.Content, &p); err != nil {
				l.sendError(conn, "bad_message", "Invalid listening payload")
				return
			}
		}
		mime := p.MimeType
		if mime == "" {
			mime = "audio/wav"
		}
		if err := l.capture.StartListening(mime); err != nil {
			l.sendError(conn, "listening_rejected", listeningRejectionMessage(err))
		}

	case MessageTypeStopListening:
		// Finalize and transcribe off the read loop so control frames keep
		// flowing during recognition.
		go l.capture.StopListening(l.ctx)

	case MessageTypePlaybackEnded:
		var p playbackPayload
		if err := json.Unmarshal(msg.Content, &p); err != nil {
			l.sendError(conn, "bad_message", "Invalid playback payload")
			return
		}
		l.playback.NotifyEnded(p.UtteranceID)

	case MessageTypePlaybackError:
		var p playbackPayload
		if err := json.Unmarshal(msg.Content, &p); err != nil {
			l.sendError(conn, "bad_message", "Invalid playback payload")
			return
		}
		l.playback.NotifyErrored(p.UtteranceID, p.Reason)

	case MessageTypeControl:
		var p controlPayload
		if err := json.Unmarshal(msg.Content, &p); err != nil {
			l.sendError(conn, "bad_message", "Invalid control payload")
			return
		}
		l.handleControl(conn, &p)

	default:
		l.sendError(conn, "bad_message", "Unknown message type: "+msg.Type)
	}
}

// handleControl applies shared audio settings. Changing the voice or starting
// the relaxation exercise stops a live utterance, and the stop is reported to
// the session so the turn returns to idle.
func (l *ChatStreamLogic) handleControl(conn *websocket.Conn, p *controlPayload) {
	if p.Volume != nil {
		l.playback.SetVolume(*p.Volume)
	}
	if p.PlaybackRate != nil {
		l.playback.SetRate(*p.PlaybackRate)
	}
	if p.Voice != nil {
		before := l.playback.Snapshot()
		l.playback.SetVoice(*p.Voice)
		if before.IsPlaying {
			l.sess.PlaybackEnded(before.UtteranceID)
		}
	}
	if p.ToggleRelaxation {
		before := l.playback.Snapshot()
		on := l.playback.ToggleRelaxation()
		if on && before.IsPlaying {
			l.sess.PlaybackEnded(before.UtteranceID)
		}
	}
	l.sendMessage(conn, &WSMessage{Type: MessageTypePlayback, Content: l.playback.Snapshot()})
}

// runTurn drives one conversation turn off the read loop. The session rejects
// overlapping turns itself.
func (l *ChatStreamLogic) runTurn(text string) {
	go func() {
		err := l.sess.HandleUserInput(l.ctx, text)
		switch err {
		case nil:
		case session.ErrTurnInFlight:
			l.sendError(l.conn, "turn_in_flight", "The AI is still responding. Please wait a moment.")
		case session.ErrNotChatting:
			l.sendError(l.conn, "not_ready", "The session is not ready for conversation yet.")
		default:
			logx.Errorf("chat turn failed: %v", err)
		}
	}()
}

func (l *ChatStreamLogic) sendWelcome(conn *websocket.Conn) {
	var messages []types.ChatMessage
	for _, m := range l.sess.Messages() {
		messages = append(messages, types.ChatMessage{
			ID:                m.ID,
			Sender:            string(m.Sender),
			Text:              m.Text,
			Timestamp:         m.Timestamp.UnixMilli(),
			DetectedSentiment: m.DetectedSentiment,
		})
	}
	l.sendMessage(conn, &WSMessage{
		Type: MessageTypeWelcome,
		Content: welcomePayload{
			SessionID: l.sess.ID,
			Stage:     string(l.sess.Stage()),
			Turn:      string(l.sess.Turn()),
			Rapport:   l.sess.Rapport(),
			Messages:  messages,
			Playback:  l.playback.Snapshot(),
		},
		Timestamp: time.Now().Unix(),
	})
}

func (l *ChatStreamLogic) sendMessage(conn *websocket.Conn, msg *WSMessage) {
	l.wsWriteMutex.Lock()
	defer l.wsWriteMutex.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		logx.Errorf("WebSocket write failed: %v", err)
	}
}

func (l *ChatStreamLogic) sendError(conn *websocket.Conn, code, message string) {
	l.sendMessage(conn, &WSMessage{
		Type:      MessageTypeError,
		Content:   noticePayload{Code: code, Message: message},
		Timestamp: time.Now().Unix(),
	})
}

func listeningRejectionMessage(err error) string {
	switch err {
	case audio.ErrRecognitionUnsupported:
		return "Speech recognition is not supported."
	case audio.ErrAITurnActive:
		return "Cannot listen while the AI is responding."
	case audio.ErrAlreadyListening:
		return "Already listening."
	default:
		return err.Error()
	}
}

// wsSink forwards session events onto the WebSocket. It never calls back into
// the session.
type wsSink struct {
	logic *ChatStreamLogic
	conn  *websocket.Conn
}

func (s *wsSink) MessageAppended(m session.ChatMessage) {
	s.logic.sendMessage(s.conn, &WSMessage{
		Type: MessageTypeMessage,
		Content: types.ChatMessage{
			ID:                m.ID,
			Sender:            string(m.Sender),
			Text:              m.Text,
			Timestamp:         m.Timestamp.UnixMilli(),
			DetectedSentiment: m.DetectedSentiment,
		},
		Timestamp: time.Now().Unix(),
	})
}

func (s *wsSink) StateChanged(stage session.Stage, turn session.TurnState) {
	s.logic.sendMessage(s.conn, &WSMessage{
		Type:    MessageTypeState,
		Content: statePayload{Stage: string(stage), Turn: string(turn)},
	})
}

func (s *wsSink) SpeechStarted(utteranceID uint64, payload session.SpeechPayload, voice string) {
	s.logic.sendMessage(s.conn, &WSMessage{
		Type: MessageTypeSpeech,
		Content: speechPayload{
			UtteranceID:  utteranceID,
			AudioDataURI: payload.AudioDataURI,
			MIMEType:     payload.MIMEType,
			Voice:        voice,
		},
		Timestamp: time.Now().Unix(),
	})
}

func (s *wsSink) Notify(code, message string) {
	s.logic.sendMessage(s.conn, &WSMessage{
		Type:      MessageTypeNotice,
		Content:   noticePayload{Code: code, Message: message},
		Timestamp: time.Now().Unix(),
	})
}
