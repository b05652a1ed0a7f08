package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Subject string `json:"subject"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) createChat(c *gin.Context) {
	var req chatRequest
	if !h.bindJSON(c, &req) {
		return
	}
	chat, err := h.svc.Support.CreateChat(c.Request.Context(), currentUser(c).ID, req.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *Handler) listChats(c *gin.Context) {
	chats, err := h.svc.Support.ListChats(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// openChat serves both the owner and the admin routes.
func (h *Handler) openChat(c *gin.Context) {
	id, ok := h.uuidParam(c, "chatId")
	if !ok {
		return
	}
	thread, err := h.svc.Support.OpenChat(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *Handler) postMessage(c *gin.Context) {
	id, ok := h.uuidParam(c, "chatId")
	if !ok {
		return
	}
	var req messageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.Support.PostMessage(c.Request.Context(), currentUser(c), id, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *Handler) adminListChats(c *gin.Context) {
	chats, err := h.svc.Support.ListAllChats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

func (h *Handler) adminSetChatStatus(c *gin.Context) {
	id, ok := h.uuidParam(c, "chatId")
	if !ok {
		return
	}
	var req statusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.svc.Support.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chat status updated successfully"})
}
