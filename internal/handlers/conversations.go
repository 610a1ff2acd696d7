package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"docchat/internal/conversations"
)

type ConversationHandler struct {
	store *conversations.Store
}

func NewConversationHandler(store *conversations.Store) *ConversationHandler {
	return &ConversationHandler{store: store}
}

// Create allocates a new conversation for the caller and returns its id.
func (h *ConversationHandler) Create(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	sub, err := userSub(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}

	id, err := h.store.Create(ctx, sub)
	if err != nil {
		slog.Error("create conversation failed", "error", err)
		return events.APIGatewayV2HTTPResponse{}, err
	}
	slog.Info("created conversation", "conversationid", id)

	return jsonResp(200, map[string]string{"conversationid": id})
}

// Get returns one conversation joined with its transcript. A missing record
// fails the invocation rather than mapping to a designed not-found payload.
func (h *ConversationHandler) Get(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	sub, err := userSub(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}
	conversationID := strings.TrimSpace(req.PathParameters["conversationid"])
	if conversationID == "" {
		return errResp(400, "conversationid is required")
	}

	view, err := h.store.Get(ctx, sub, conversationID)
	if err != nil {
		slog.Error("get conversation failed", "conversationid", conversationID, "error", err)
		return events.APIGatewayV2HTTPResponse{}, err
	}

	return jsonResp(200, map[string]any{"conversation": view})
}

// List returns the caller's conversations, newest first, as a bare array.
func (h *ConversationHandler) List(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	sub, err := userSub(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}

	items, err := h.store.List(ctx, sub)
	if err != nil {
		slog.Error("list conversations failed", "error", err)
		return events.APIGatewayV2HTTPResponse{}, err
	}

	return jsonResp(200, items)
}
