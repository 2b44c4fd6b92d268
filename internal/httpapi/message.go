package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/jarvis-assistant/jarvis/internal/logging"
	"github.com/jarvis-assistant/jarvis/internal/session"
	"github.com/jarvis-assistant/jarvis/internal/turn"
)

type messageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// messageResponse is the success body. Message duplicates Response for
// clients that read either field.
type messageResponse struct {
	Response  string   `json:"response"`
	Message   string   `json:"message"`
	Thoughts  []string `json:"thoughts"`
	ToolCalls []string `json:"tool_calls"`
	SessionID string   `json:"session_id"`
}

// errorResponse is the failure body, still sent with status 200.
type errorResponse struct {
	Response string `json:"response"`
	Message  string `json:"message"`
}

func newMessageResponse(id string, res turn.Result) messageResponse {
	thoughts, tools := res.Thoughts, res.ToolCalls
	if thoughts == nil {
		thoughts = []string{}
	}
	if tools == nil {
		tools = []string{}
	}
	return messageResponse{
		Response:  res.Response,
		Message:   res.Response,
		Thoughts:  thoughts,
		ToolCalls: tools,
		SessionID: id,
	}
}

func newErrorResponse(err error) errorResponse {
	text := "Error: " + err.Error()
	return errorResponse{Response: text, Message: text}
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("message handler panicked", "panic", rec)
			writeJSON(w, http.StatusOK, newErrorResponse(errors.Errorf("internal error: %v", rec)))
		}
	}()

	req, err := decodeMessage(r.Body)
	if err != nil {
		log.Warn("rejected message", "err", err)
		writeJSON(w, http.StatusOK, newErrorResponse(err))
		return
	}

	id := req.SessionID
	if id == "" {
		id = session.NewID()
	}
	ctx := logging.WithSessionID(r.Context(), id)

	res, err := s.Ask(ctx, id, req.Message)
	if err != nil {
		logging.FromContext(ctx).Error("turn failed", "err", err)
		writeJSON(w, http.StatusOK, newErrorResponse(err))
		return
	}

	logging.FromContext(ctx).Info("turn complete",
		"response_len", len(res.Response),
		"thoughts", len(res.Thoughts),
		"tool_calls", res.ToolCalls,
	)
	writeJSON(w, http.StatusOK, newMessageResponse(id, res))
}

func decodeMessage(body io.Reader) (messageRequest, error) {
	var req messageRequest
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&req); err != nil {
		return req, errors.Wrap(err, "invalid request body")
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if strings.TrimSpace(req.Message) == "" {
		return req, ErrEmptyMessage
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
