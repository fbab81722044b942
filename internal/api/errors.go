package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultSendError is reported when a failed send carries no error text.
const DefaultSendError = "Unable to send message right now"

// FetchFailure is a non-2xx response to a read.
type FetchFailure struct {
	Status int
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("unable to fetch messages (%d)", e.Status)
}

// SendFailure is a non-2xx response to a write. Message holds the server's
// error text, or DefaultSendError.
type SendFailure struct {
	Status  int
	Message string
}

func (e *SendFailure) Error() string {
	return e.Message
}

// TransportFailure is a network-level failure such as a refused connection
// or a timeout. A cancelled context is not a TransportFailure.
type TransportFailure struct {
	Op  string
	Err error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("%s messages: %v", e.Op, e.Err)
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// sendErrorText prefers a JSON {"error"} or {"message"} field, then the raw
// body text, then DefaultSendError.
func sendErrorText(body []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		if text := strings.TrimSpace(payload.Error); text != "" {
			return text
		}
		if text := strings.TrimSpace(payload.Message); text != "" {
			return text
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return DefaultSendError
}
