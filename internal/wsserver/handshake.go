package wsserver

import (
	"bufio"
	"crypto/sha1" // #nosec G505 - RFC 6455 mandates SHA-1 for the accept key
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/leslieo2/go-hot-reload/internal/constants"
)

var ErrHandshake = errors.New("websocket handshake failed")

// ComputeAcceptKey derives Sec-WebSocket-Accept from the client's key per
// RFC 6455: base64(SHA-1(key + GUID)).
func ComputeAcceptKey(clientKey string) string {
	sum := sha1.Sum([]byte(clientKey + constants.WebSocketGUID)) // #nosec G401
	return base64.StdEncoding.EncodeToString(sum[:])
}

// handshakeRequest is the parsed head of an upgrade request.
type handshakeRequest struct {
	key       string
	userAgent string
}

// readHandshake reads and validates the HTTP upgrade request from a new
// connection. The request head is capped at MaxHandshakeBytes.
func readHandshake(reader *bufio.Reader) (handshakeRequest, error) {
	var req handshakeRequest

	requestLine, err := readHeaderLine(reader)
	if err != nil {
		return req, fmt.Errorf("%w: reading request line: %s", ErrHandshake, err)
	}
	if !strings.HasPrefix(requestLine, "GET ") {
		return req, fmt.Errorf("%w: not a GET request", ErrHandshake)
	}

	headers := make(map[string]string)
	total := len(requestLine)
	for {
		line, err := readHeaderLine(reader)
		if err != nil {
			return req, fmt.Errorf("%w: reading headers: %s", ErrHandshake, err)
		}
		if line == "" {
			break
		}
		total += len(line)
		if total > constants.MaxHandshakeBytes {
			return req, fmt.Errorf("%w: request head too large", ErrHandshake)
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}

	if !strings.EqualFold(headers[strings.ToLower(constants.HeaderUpgrade)], constants.UpgradeWebSocket) {
		return req, fmt.Errorf("%w: missing Upgrade: websocket header", ErrHandshake)
	}
	req.key = headers[strings.ToLower(constants.HeaderWSKey)]
	if req.key == "" {
		return req, fmt.Errorf("%w: missing Sec-WebSocket-Key header", ErrHandshake)
	}
	req.userAgent = headers[strings.ToLower(constants.HeaderUserAgent)]
	return req, nil
}

// readHeaderLine reads one CRLF-terminated line without growing past the
// reader's buffer, so a line with no terminator cannot allocate unboundedly.
func readHeaderLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return "", errors.New("header line too long")
		}
		return "", err
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

// writeHandshakeResponse completes the upgrade with a 101 response.
func writeHandshakeResponse(conn net.Conn, acceptKey string) error {
	response := fmt.Sprintf(
		"HTTP/1.1 101 Switching Protocols\r\n"+
			"%s: %s\r\n"+
			"%s: %s\r\n"+
			"%s: %s\r\n\r\n",
		constants.HeaderUpgrade, constants.UpgradeWebSocket,
		constants.HeaderConnection, constants.HeaderUpgrade,
		constants.HeaderWSAccept, acceptKey,
	)
	if _, err := conn.Write([]byte(response)); err != nil {
		return fmt.Errorf("failed to write handshake response: %w", err)
	}
	return nil
}

// writeHandshakeRejection answers a malformed upgrade attempt.
func writeHandshakeRejection(conn net.Conn, reason string) {
	response := fmt.Sprintf(
		"HTTP/1.1 400 Bad Request\r\nContent-Length: %d\r\n\r\n%s",
		len(reason), reason,
	)
	_, _ = conn.Write([]byte(response))
}
