package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"kisanmitra/internal/action"
)

// flowHandler is a unary Connect procedure. The request body is handed to the
// gate untouched and the response is always the result envelope; transport
// errors are reserved for an unknown flow.
func (s *Service) flowHandler(name string) http.Handler {
	return connect.NewUnaryHandler(
		Procedure(name),
		func(ctx context.Context, req *connect.Request[json.RawMessage]) (*connect.Response[action.Result[any]], error) {
			var raw json.RawMessage
			if req.Msg != nil {
				raw = *req.Msg
			}
			res, err := s.gate.Run(ctx, name, raw)
			if err != nil {
				s.log.Error("flow dispatch", zap.String("flow", name), zap.Error(err))
				return nil, connect.NewError(connect.CodeNotFound, err)
			}
			return connect.NewResponse(&res), nil
		},
		connect.WithCodec(jsonCodec{}),
	)
}
