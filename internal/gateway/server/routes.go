package server

import (
	"net/http"

	"go.uber.org/zap"

	"kisanmitra/internal/gateway/handler"
	"kisanmitra/internal/gateway/middleware"
)

// NewMux mounts the flow service behind CORS and the access log.
func NewMux(svc *handler.Service, allowedOrigins []string, logger *zap.Logger) http.Handler {
	mux := handler.BuildMux(svc)
	return middleware.AccessLog(logger)(middleware.CORS(allowedOrigins)(mux))
}
