package dispatch

import (
	"encoding/json"
	"net/http"
	"strings"

	domPayhub "github.com/courtfunds/payhub-bridge/internal/domain/payhub"
	"go.uber.org/zap"
)

const (
	msgTransport     = "Failed to send payment instruction to PayHub: "
	msgPayloadParse  = "Failed to parse request payload: "
	msgRemotePrefix  = "Failed: "
	errorMessageJoin = ", "
)

// classify turns a delivered HTTP response into a transfer outcome.
// 200 and 201 are the only success statuses; anything else assembles a
// human-readable error from the response body.
func classify(logger *zap.Logger, instructionID int, res *Result) domPayhub.Outcome {
	if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusCreated {
		return domPayhub.Outcome{InstructionID: instructionID, Success: true}
	}

	raw := string(res.Body)
	logger.Info("payhub_submit_rejected",
		zap.Int("status", res.StatusCode),
		zap.String("body", raw),
	)

	msg := remoteErrorText(res.Body)
	if msg == "" {
		msg = raw
	}
	return domPayhub.Outcome{
		InstructionID: instructionID,
		ErrorText:     msgRemotePrefix + msg,
	}
}

// remoteErrorText extracts the "error" and "message" values from a
// structured PayHub error body. The body is read once into memory upstream;
// a body that is not a JSON object, or carries neither key with a non-blank
// string value, yields "" so the caller can fall back to the raw text.
func remoteErrorText(body []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}

	parts := make([]string, 0, 2)
	for _, key := range []string{"error", "message"} {
		value, ok := fields[key].(string)
		if !ok {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, errorMessageJoin)
}
