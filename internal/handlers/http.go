package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// userSub pulls the verified Cognito subject out of the JWT authorizer
// claims. Identity is never validated here; the authorizer already did.
func userSub(req events.APIGatewayV2HTTPRequest) (string, error) {
	if req.RequestContext.Authorizer == nil || req.RequestContext.Authorizer.JWT == nil {
		return "", errors.New("missing authorizer claims")
	}
	sub := strings.TrimSpace(req.RequestContext.Authorizer.JWT.Claims["sub"])
	if sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}

func jsonResp(status int, v any) (events.APIGatewayV2HTTPResponse, error) {
	b, _ := json.Marshal(v)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Headers": "*",
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": "*",
		},
		Body: string(b),
	}, nil
}

func errResp(status int, msg string) (events.APIGatewayV2HTTPResponse, error) {
	return jsonResp(status, map[string]any{
		"error": msg,
	})
}
