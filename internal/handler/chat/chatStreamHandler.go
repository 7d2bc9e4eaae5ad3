package chat

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/manas284/empathy-ai/internal/logic/chat"
	"github.com/manas284/empathy-ai/internal/session"
	"github.com/manas284/empathy-ai/internal/svc"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin connections allowed; tighten for production deployments.
		return true
	},
}

func ChatStreamHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionId")
		sess, err := svcCtx.Sessions.Get(sessionID)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		playback, ok := svcCtx.Playback(sessionID)
		if !ok {
			httpx.ErrorCtx(r.Context(), w, session.ErrSessionNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Errorf("WebSocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		l := chat.NewChatStreamLogic(r.Context(), svcCtx, sess, playback)
		l.HandleWebSocket(conn)
	}
}
