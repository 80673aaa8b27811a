package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	apiError "github.com/vidhi28vaghela05/lms-project-sub000/errors"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 30,
	})
	limitCreates := ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: apiError.ErrorHandler,
		KeyFunc:      keyFunc,
	})

	apirouter := router.Group("/api/v1")

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/partners", s.handleGetPartners())
	authorized.GET("/conversations", s.handleListConversations())
	authorized.POST("/conversation", limitCreates, s.handleCreateDirectConversation())
	authorized.POST("/group", limitCreates, s.handleCreateGroup())
	authorized.POST("/notifications", limitCreates, s.handleSendSystemNotification())
	authorized.GET("/messages/:conversationId", s.handleListMessages())
	authorized.GET("/users/online", s.handleGetOnlineUsers())

	// The browser WebSocket API cannot set an Authorization header, so the
	// upgrade endpoint takes the token as a query param instead.
	apirouter.GET("/ws", s.handleWebsocket())
}
