package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	errs "github.com/vidhi28vaghela05/lms-project-sub000/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/realtime"
	"github.com/vidhi28vaghela05/lms-project-sub000/server/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebsocket authenticates the token from the query string, upgrades,
// and hands the connection to the realtime hub.
func (s *Server) handleWebsocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("missing token", http.StatusUnauthorized))
			return
		}
		user, err := s.resolvePrincipal(token)
		if err != nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("invalid token", http.StatusUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}

		client := realtime.NewClient(s.Hub, conn, user.ID, user.FullName)
		client.Run()
	}
}
