package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"docchat/internal/chat"
	"docchat/internal/kb"
)

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateHandler struct {
	ssm     kb.SSMClient
	ssmPath string
	chain   *chat.Chain
}

func NewGenerateHandler(ssm kb.SSMClient, ssmPath string, chain *chat.Chain) *GenerateHandler {
	return &GenerateHandler{ssm: ssm, ssmPath: ssmPath, chain: chain}
}

// Handle answers one utterance against the knowledge base and the
// conversation's transcript. The response body is the bare answer string.
// Generation failures propagate; there is no fallback answer.
func (h *GenerateHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	var body GenerateRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return errResp(400, "invalid json body")
	}
	body.Prompt = strings.TrimSpace(body.Prompt)
	if body.Prompt == "" {
		return errResp(400, "prompt is required")
	}

	sub, err := userSub(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}
	conversationID := strings.TrimSpace(req.PathParameters["conversationid"])
	if conversationID == "" {
		return errResp(400, "conversationid is required")
	}

	// Strict fetch here: a malformed descriptor fails the request, unlike
	// the upload path's lenient parse.
	descriptor, err := kb.FetchDescriptor(ctx, h.ssm, h.ssmPath)
	if err != nil {
		slog.Error("knowledge base descriptor fetch failed", "error", err)
		return events.APIGatewayV2HTTPResponse{}, err
	}

	res, err := h.chain.Ask(ctx, descriptor.KnowledgeBaseID, sub, conversationID, body.Prompt)
	if err != nil {
		slog.Error("response generation failed", "conversationid", conversationID, "error", err)
		return events.APIGatewayV2HTTPResponse{}, err
	}
	slog.Info("generated response", "conversationid", conversationID, "sources", res.Sources)

	return jsonResp(200, res.Answer)
}
