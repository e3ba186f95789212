package main

// Serve the holiday API from API Gateway (HTTP API, payload v2):
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"holiday-backend/internal/bootstrap"
	"holiday-backend/internal/shared/config"
	"holiday-backend/internal/shared/server/respond"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		initErr = err
		return
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		return errorResponse(http.StatusServiceUnavailable, "bootstrap_failed", "Service unavailable"), nil
	}
	return ginLambda.ProxyWithContext(ctx, withRequestID(req))
}

// withRequestID forwards API Gateway's request id so logs on both sides match.
func withRequestID(req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPRequest {
	id := req.RequestContext.RequestID
	if id == "" {
		return req
	}
	headers := make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[k] = v
	}
	if headers["x-request-id"] == "" && headers["X-Request-Id"] == "" {
		headers["x-request-id"] = id
	}
	req.Headers = headers
	return req
}

func errorResponse(status int, code, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: message, Code: code})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
