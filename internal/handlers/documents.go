package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"docchat/internal/documents"
)

type DocumentHandler struct {
	store *documents.Store
}

func NewDocumentHandler(store *documents.Store) *DocumentHandler {
	return &DocumentHandler{store: store}
}

// Get returns one document's metadata by (caller, documentid).
func (h *DocumentHandler) Get(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	sub, err := userSub(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}
	documentID := strings.TrimSpace(req.PathParameters["documentid"])
	if documentID == "" {
		return errResp(400, "documentid is required")
	}

	doc, err := h.store.Get(ctx, sub, documentID)
	if err != nil {
		slog.Error("get document failed", "documentid", documentID, "error", err)
		return events.APIGatewayV2HTTPResponse{}, err
	}

	return jsonResp(200, map[string]any{"document": doc})
}

// ListAll returns every document in the table, newest first, with no
// ownership filter. The caller still has to be authenticated, but sees
// other users' documents too.
func (h *DocumentHandler) ListAll(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if _, err := userSub(req); err != nil {
		return errResp(401, "unauthorized")
	}

	items, err := h.store.ListAll(ctx)
	if err != nil {
		slog.Error("list documents failed", "error", err)
		return events.APIGatewayV2HTTPResponse{}, err
	}

	return jsonResp(200, items)
}
