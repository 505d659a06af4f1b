package handler

import (
	"nutritrack-api/common"
	"net/http"
)

// ErrorHandlingMiddleware adapts handlers that return an *common.AppError
// into plain http.HandlerFunc, sending the taxonomy error as JSON.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}
