package proxy

import (
	"context"
	"errors"
	"net"

	"ragkit-hq/bridge/pkg/commands"
	"ragkit-hq/bridge/pkg/proxy/types"
	"ragkit-hq/bridge/pkg/upstream"
)

// HandleError converts bridge and backend errors to error responses with the
// matching HTTP status.
//
// Example usage:
//
//	if err != nil {
//	    errResp := HandleError(err)
//	    WriteErrorResponse(w, errResp)
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	// Check for RequestError (validation errors)
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	if errors.Is(err, commands.ErrUnknownCommand) {
		return types.NewNotFoundError(err.Error(), types.CodeUnknownCommand)
	}

	var argErr *commands.ArgumentError
	if errors.As(err, &argErr) {
		return types.NewInvalidRequestError(argErr.Error(), types.CodeInvalidValue)
	}

	if errors.Is(err, upstream.ErrNotReady) {
		return types.NewServiceUnavailableError(err.Error())
	}

	var upstreamErr *upstream.UpstreamError
	if errors.As(err, &upstreamErr) {
		resp := types.NewBadGatewayError(upstreamErr.Error(), types.CodeBackendError)
		resp.UpstreamStatus = upstreamErr.Status
		return resp
	}

	var transportErr *upstream.TransportError
	if errors.As(err, &transportErr) {
		if isTimeout(transportErr) {
			return types.NewGatewayTimeoutError(transportErr.Error())
		}
		return types.NewBadGatewayError(transportErr.Error(), types.CodeBackendUnreachable)
	}

	var parseErr *upstream.ParseError
	if errors.As(err, &parseErr) {
		return types.NewBadGatewayError(parseErr.Error(), types.CodeInvalidResponse)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewGatewayTimeoutError("request deadline exceeded")
	}

	// Default to internal server error for unknown errors
	return types.NewServerError(
		"An internal error occurred. Please try again later.",
	)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
