package main

import (
	"log"

	"github.com/vidhi28vaghela05/lms-project-sub000/config"
	"github.com/vidhi28vaghela05/lms-project-sub000/db"
	"github.com/vidhi28vaghela05/lms-project-sub000/realtime"
	"github.com/vidhi28vaghela05/lms-project-sub000/server"
	"github.com/vidhi28vaghela05/lms-project-sub000/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gormDB := db.GetDB(conf)
	userRepo := db.NewUserRepo(gormDB)
	conversationRepo := db.NewConversationRepo(gormDB)
	messageRepo := db.NewMessageRepo(gormDB)

	chatService := services.NewChatService(conversationRepo, messageRepo, conf)
	partnerService := services.NewPartnerService(userRepo)

	var presence realtime.Registry
	if conf.RedisAddr != "" {
		presence = realtime.NewRedisRegistry(conf.RedisAddr)
	} else {
		presence = realtime.NewMemoryRegistry()
	}
	hub := realtime.NewHub(chatService, presence)

	s := &server.Server{
		Config:         conf,
		UserRepository: userRepo,
		ChatService:    chatService,
		PartnerService: partnerService,
		Hub:            hub,
		Presence:       presence,
		DB:             *gormDB,
	}

	s.Start()
}
