package wsserver

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/leslieo2/go-hot-reload/internal/constants"
)

func TestReadHandshake_UnterminatedLineStaysBounded(t *testing.T) {
	// A line with no terminator must fail once it fills the reader's buffer
	// instead of accumulating the whole stream in memory.
	request := "GET /ws " + strings.Repeat("a", 4*constants.MaxHandshakeBytes)
	reader := bufio.NewReaderSize(strings.NewReader(request), constants.MaxHandshakeBytes)
	if _, err := readHandshake(reader); !errors.Is(err, ErrHandshake) {
		t.Fatalf("expected ErrHandshake, got %v", err)
	}
}

func TestComputeAcceptKey_RFCWorkedExample(t *testing.T) {
	// RFC 6455 section 1.3 worked example.
	got := ComputeAcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Errorf("ComputeAcceptKey() = %q, want %q", got, want)
	}
}

func TestReadHandshake(t *testing.T) {
	valid := "GET /ws HTTP/1.1\r\n" +
		"Host: localhost\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n" +
		"User-Agent: test-agent\r\n" +
		"\r\n"

	tests := []struct {
		name    string
		request string
		wantErr bool
	}{
		{name: "valid upgrade", request: valid},
		{
			name: "upgrade header case-insensitive",
			request: strings.Replace(valid, "Upgrade: websocket", "upgrade: WebSocket", 1),
		},
		{
			name:    "missing upgrade header",
			request: strings.Replace(valid, "Upgrade: websocket\r\n", "", 1),
			wantErr: true,
		},
		{
			name:    "missing websocket key",
			request: strings.Replace(valid, "Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n", "", 1),
			wantErr: true,
		},
		{
			name:    "not a GET request",
			request: strings.Replace(valid, "GET", "POST", 1),
			wantErr: true,
		},
		{
			name:    "not HTTP at all",
			request: "\x00\x01\x02garbage\r\n\r\n",
			wantErr: true,
		},
		{
			name: "request head over size cap",
			request: "GET /ws HTTP/1.1\r\n" +
				"X-Padding: " + strings.Repeat("a", constants.MaxHandshakeBytes) + "\r\n" +
				"\r\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := readHandshake(bufio.NewReader(strings.NewReader(tt.request)))
			if tt.wantErr {
				if !errors.Is(err, ErrHandshake) {
					t.Fatalf("expected ErrHandshake, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("readHandshake() failed: %v", err)
			}
			if req.key != "dGhlIHNhbXBsZSBub25jZQ==" {
				t.Errorf("key = %q", req.key)
			}
			if req.userAgent != "test-agent" {
				t.Errorf("userAgent = %q", req.userAgent)
			}
		})
	}
}
