package ipc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxMessageSize caps the size of one update message.
const MaxMessageSize = 64 << 10

var (
	// ErrMessageTooLarge is returned when a message exceeds MaxMessageSize.
	ErrMessageTooLarge = errors.New("message too large")
	// ErrUnterminated is returned when the stream ends before the empty
	// terminating token.
	ErrUnterminated = errors.New("message not terminated")
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// UpdateData is returned for an applied configuration update.
type UpdateData struct {
	Scope string `json:"scope"`
}

// EncodeTokens frames tokens as NUL-terminated strings followed by an empty
// token. Tokens must be non-empty and free of NUL bytes.
func EncodeTokens(tokens []string) ([]byte, error) {
	var buf bytes.Buffer
	for _, tok := range tokens {
		if tok == "" {
			return nil, fmt.Errorf("empty token")
		}
		if bytes.IndexByte([]byte(tok), 0) >= 0 {
			return nil, fmt.Errorf("token %q contains a NUL byte", tok)
		}
		buf.WriteString(tok)
		buf.WriteByte(0)
	}
	buf.WriteByte(0)
	if buf.Len() > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}
	return buf.Bytes(), nil
}

// ReadTokens reads one framed message from r.
func ReadTokens(r *bufio.Reader) ([]string, error) {
	var (
		tokens []string
		size   int
	)
	for {
		tok, err := r.ReadString(0)
		size += len(tok)
		if size > MaxMessageSize {
			return nil, ErrMessageTooLarge
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrUnterminated
			}
			return nil, err
		}
		tok = tok[:len(tok)-1]
		if tok == "" {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = raw
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseResponse parses a response from JSON bytes
func ParseResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
