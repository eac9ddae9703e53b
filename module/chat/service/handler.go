package service

import (
	"net/http"
	"strconv"

	midsec "FitProject/middleware/security"
	"FitProject/module/chat/model"
	usermodel "FitProject/module/user/model"
	"FitProject/tools/errs"

	"github.com/gin-gonic/gin"
)

// ChatHandler is the REST surface clients use for cold start and
// offline access: conversation list, create-or-find, history, and the
// user picker. Live traffic goes over the websocket gateway.
type ChatHandler struct {
	convs *model.ConversationStore
	users *usermodel.UserStore
}

func NewChatHandler(convs *model.ConversationStore, users *usermodel.UserStore) *ChatHandler {
	return &ChatHandler{convs: convs, users: users}
}

// ListMine returns the caller's conversations, most recent activity
// first.
//
// GET /api/chats/user/me
func (h *ChatHandler) ListMine(c *gin.Context) {
	uid := midsec.UserID(c)
	convs, err := h.convs.ListByUser(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

type createChatReq struct {
	ParticipantID string `json:"participantId"`
}

// Create finds or creates the conversation for {caller, participantId}.
// Idempotent per unordered pair: existing conversation answers 200,
// a fresh one 201.
//
// POST /api/chats
func (h *ChatHandler) Create(c *gin.Context) {
	uid := midsec.UserID(c)

	var req createChatReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ParticipantID == "" {
		abortWithError(c, errs.ErrArgs.WrapMsg("participant id required"))
		return
	}
	if req.ParticipantID == uid {
		abortWithError(c, errs.ErrArgs.WrapMsg("cannot chat with yourself"))
		return
	}

	// the other participant must exist before a conversation is created
	if _, err := h.users.FindByID(c.Request.Context(), req.ParticipantID); err != nil {
		abortWithError(c, err)
		return
	}

	conv, created, err := h.convs.CreateOrFind(c.Request.Context(), uid, req.ParticipantID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, conv)
}

// History returns the most recent N messages, oldest first.
//
// GET /api/chats/:chatId/messages?limit=N
func (h *ChatHandler) History(c *gin.Context) {
	uid := midsec.UserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	msgs, err := h.convs.History(c.Request.Context(), c.Param("chatId"), uid, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Get returns one conversation the caller participates in.
//
// GET /api/chats/:chatId
func (h *ChatHandler) Get(c *gin.Context) {
	uid := midsec.UserID(c)
	conv, err := h.convs.GetFor(c.Request.Context(), c.Param("chatId"), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// SearchUsers powers the start-a-chat picker.
//
// GET /api/users/search?q=prefix
func (h *ChatHandler) SearchUsers(c *gin.Context) {
	uid := midsec.UserID(c)
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusOK, []usermodel.User{})
		return
	}
	users, err := h.users.SearchByUsername(c.Request.Context(), q, uid, 20)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// abortWithError maps the business code onto the HTTP status.
func abortWithError(c *gin.Context, err error) {
	ce, ok := errs.AsCode(err)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errs.ErrInternalServer)
		return
	}
	status := http.StatusInternalServerError
	switch ce.Code {
	case errs.ArgsError:
		status = http.StatusBadRequest
	case errs.TokenInvalidError:
		status = http.StatusUnauthorized
	case errs.NoPermissionError:
		status = http.StatusForbidden
	case errs.RecordNotFound:
		status = http.StatusNotFound
	}
	c.AbortWithStatusJSON(status, ce)
}
