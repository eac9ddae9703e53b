package main

import (
	"context"
	"time"

	"FitProject/global"
	"FitProject/logger"
	mid "FitProject/middleware"
	midsec "FitProject/middleware/security"
	chatmodel "FitProject/module/chat/model"
	chatsvc "FitProject/module/chat/service"
	usermodel "FitProject/module/user/model"
	"FitProject/service/chat"
	"FitProject/service/kafka"
	"FitProject/service/mgo"
	"FitProject/tools/security"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := global.ConfigAll(ctx); err != nil {
		logger.Errorf("[main] startup failed: %v", err)
		return
	}

	db := mgo.GetDB()
	convs := chatmodel.NewConversationStore(db)
	users := usermodel.NewUserStore(db)
	if err := convs.EnsureIndexes(ctx); err != nil {
		logger.Errorf("[main] ensure indexes: %v", err)
		return
	}

	jwtOpts := security.DefaultOptions(global.GetJwtSecret())
	authFn := func(credential string) (string, error) {
		return security.Verify(jwtOpts, credential, "")
	}

	gw := chat.NewServer(chat.Config{GatewayID: global.GatewayID()}, chatsvc.NewGatewayStore(convs), authFn)

	// stored-message event stream, only when brokers are configured
	if brokers := global.KafkaBrokers(); len(brokers) > 0 {
		if err := kafka.InitProducer(brokers); err != nil {
			logger.Warnf("[main] kafka unavailable, event stream disabled: %v", err)
		} else {
			gw.SetMsgHandler(kafka.SendAsync)
			defer kafka.CloseProducer()
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws/chat", gw.HandleWS)

	h := chatsvc.NewChatHandler(convs, users)
	authOpt := mid.RouteOpt{IsAuth: true, Auth: midsec.DefaultOptions(jwtOpts)}
	mid.GET(r, "/api/chats/user/me", h.ListMine, authOpt)
	mid.POST(r, "/api/chats", h.Create, authOpt)
	mid.GET(r, "/api/chats/:chatId/messages", h.History, authOpt)
	mid.GET(r, "/api/chats/:chatId", h.Get, authOpt)
	mid.GET(r, "/api/users/search", h.SearchUsers, authOpt)

	logger.Infof("[main] gateway %s listening on %s", global.GatewayID(), global.HTTPAddr())
	if err := r.Run(global.HTTPAddr()); err != nil {
		logger.Errorf("[main] http server: %v", err)
	}
}
