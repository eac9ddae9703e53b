package chat

import (
	"net"
	"net/http"
	"strings"
	"time"

	"FitProject/logger"
	"FitProject/tools/errs"
	"FitProject/tools/safe"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	readLimit    = 1 << 16
	readDeadline = 90 * time.Second
)

// HandleWS is the persistent-connection endpoint. The credential is
// verified before the upgrade completes; a connection that fails
// verification is refused with 401 and no event from it is ever
// processed.
func (s *Server) HandleWS(c *gin.Context) {
	token := extractCredential(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": errs.TokenInvalidError, "msg": "token not provided"})
		return
	}
	userID, err := s.auth(token)
	if err != nil {
		logger.Infof("[ws] handshake refused: %v", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": errs.TokenInvalidError, "msg": "token invalid"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	client, err := s.Register(userID, ws)
	if err != nil {
		logger.Errorf("[ws] register failed user=%s err=%v", userID, err)
		_ = ws.Close()
		return
	}
	logger.Infof("[ws] connected user=%s conn=%s", client.UserID, client.ConnID)

	safe.Go(func() { s.writePump(client) })

	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(readDeadline))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readDeadline))
	})

	// read loop: read only, never write; the write pump owns the socket
	// for writing and closes it on teardown
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s", client.ConnID)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s", client.ConnID)
			} else {
				logger.Infof("[ws] read err conn=%s err=%v", client.ConnID, rerr)
			}
			break
		}
		_ = ws.SetReadDeadline(time.Now().Add(readDeadline))
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[ws] bad frame conn=%s err=%v sample=%q", client.ConnID, perr, sample)
			continue
		}

		// per-event failures stay on this connection; the dispatcher
		// already pushed a sendError where one applies
		if derr := s.disp.Dispatch(s, frame, client); derr != nil {
			logger.Infof("[ws] event rejected conn=%s type=%s err=%v", client.ConnID, frame.Type, derr)
		}
	}

	s.Unregister(client.ConnID)
	logger.Infof("[ws] disconnected user=%s conn=%s", client.UserID, client.ConnID)
}

// extractCredential accepts Authorization: Bearer, x-auth-token, or a
// token query parameter (browser websocket clients cannot always set
// headers).
func extractCredential(c *gin.Context) string {
	if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return strings.TrimSpace(authz[len("bearer "):])
		}
	}
	if t := strings.TrimSpace(c.GetHeader("x-auth-token")); t != "" {
		return t
	}
	return strings.TrimSpace(c.Query("token"))
}
