package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/scrypster/kbbridge/internal/knowledge"
)

// maxRequestBytes caps request bodies.
const maxRequestBytes = 1 << 20

// NewHandler serves svc under prefix, one POST endpoint per method.
func NewHandler(svc knowledge.Service, prefix string, logger *zap.Logger) http.Handler {
	if prefix == "" {
		prefix = knowledge.DefaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix = "/" + strings.Trim(prefix, "/")

	mux := http.NewServeMux()
	for _, method := range knowledge.Methods {
		mux.HandleFunc("POST "+prefix+"/"+method, func(w http.ResponseWriter, r *http.Request) {
			params, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
			if err != nil {
				writeError(w, http.StatusBadRequest, knowledge.CodeBadRequest, "failed to read request body")
				return
			}

			result, err := knowledge.Dispatch(r.Context(), svc, method, params)
			if err != nil {
				code := knowledge.ErrorCode(err)
				status := http.StatusInternalServerError
				if code == knowledge.CodeBadRequest {
					status = http.StatusBadRequest
				}
				logger.Warn("knowledge base call failed",
					zap.String("method", method), zap.String("code", code), zap.Error(err))
				writeError(w, status, code, err.Error())
				return
			}

			writeJSON(w, http.StatusOK, result)
		})
	}
	mux.HandleFunc(prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, knowledge.CodeUnknownMethod,
			"unknown knowledge base method "+strings.TrimPrefix(r.URL.Path, prefix+"/"))
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, knowledge.ErrorResponse{Error: message, Code: code})
}
