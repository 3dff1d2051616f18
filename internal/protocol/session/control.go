package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/lazctl/internal/protocol/frame"
	"github.com/google/uuid"
)

const (
	controlTypeHello    = "hello"
	controlTypeHelloAck = "hello.ack"

	AckStatusAccepted = "accepted"
	AckStatusRejected = "rejected"

	maxControlLine = 16 * 1024
)

var (
	ErrInvalidHello           = errors.New("session: invalid hello")
	ErrInvalidHelloAck        = errors.New("session: invalid hello ack")
	ErrHelloRejected          = errors.New("session: hello rejected")
	ErrControlMessageTooLarge = errors.New("session: control message too large")
)

// Hello is the client->host session-start line.
type Hello struct {
	ClientID string `json:"client_id"`
	Client   string `json:"client"`
	Protocol uint16 `json:"protocol"`
	Token    string `json:"token,omitempty"`
}

// NewHello returns a hello with a fresh client id.
func NewHello(client string) Hello {
	return Hello{
		ClientID: uuid.NewString(),
		Client:   client,
		Protocol: frame.Version,
	}
}

func (h Hello) Validate() error {
	if _, err := uuid.Parse(strings.TrimSpace(h.ClientID)); err != nil {
		return fmt.Errorf("%w: client_id: %v", ErrInvalidHello, err)
	}
	if h.Protocol == 0 {
		return fmt.Errorf("%w: missing protocol", ErrInvalidHello)
	}
	return nil
}

// HelloAck is the host->client answer.
type HelloAck struct {
	Status      string `json:"status"`
	Code        uint32 `json:"code"`
	Message     string `json:"message"`
	ClientID    string `json:"client_id"`
	Host        string `json:"host"`
	Protocol    uint16 `json:"protocol"`
	TimestampMS uint64 `json:"timestamp_ms"`
}

// AcceptHello builds the host's answer to h. Protocol mismatches are
// rejected rather than negotiated.
func AcceptHello(h Hello, host string, now time.Time) HelloAck {
	ack := HelloAck{
		Status:      AckStatusAccepted,
		ClientID:    h.ClientID,
		Host:        host,
		Protocol:    frame.Version,
		TimestampMS: uint64(now.UnixMilli()),
	}
	if err := h.Validate(); err != nil {
		ack.Status = AckStatusRejected
		ack.Code = 1
		ack.Message = err.Error()
		if strings.TrimSpace(ack.ClientID) == "" {
			ack.ClientID = "unknown"
		}
		return ack
	}
	if h.Protocol != frame.Version {
		ack.Status = AckStatusRejected
		ack.Code = 2
		ack.Message = fmt.Sprintf("unsupported protocol %d", h.Protocol)
	}
	return ack
}

func (a HelloAck) Validate() error {
	status := strings.TrimSpace(a.Status)
	if status != AckStatusAccepted && status != AckStatusRejected {
		return fmt.Errorf("%w: invalid status", ErrInvalidHelloAck)
	}
	if strings.TrimSpace(a.ClientID) == "" {
		return fmt.Errorf("%w: missing client_id", ErrInvalidHelloAck)
	}
	if a.TimestampMS == 0 {
		return fmt.Errorf("%w: missing timestamp_ms", ErrInvalidHelloAck)
	}
	return nil
}

// Check confirms the ack accepts the given hello.
func (a HelloAck) Check(h Hello) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ClientID != h.ClientID {
		return fmt.Errorf("%w: client_id %q does not match %q", ErrInvalidHelloAck, a.ClientID, h.ClientID)
	}
	if a.Status != AckStatusAccepted {
		return fmt.Errorf("%w: code=%d %s", ErrHelloRejected, a.Code, a.Message)
	}
	return nil
}

type controlEnvelope struct {
	Type  string    `json:"type"`
	Hello *Hello    `json:"hello,omitempty"`
	Ack   *HelloAck `json:"hello_ack,omitempty"`
}

func WriteHello(w io.Writer, h Hello) error {
	if err := h.Validate(); err != nil {
		return err
	}
	return writeControlEnvelope(w, controlEnvelope{Type: controlTypeHello, Hello: &h})
}

func ReadHello(r *bufio.Reader) (Hello, error) {
	env, err := readControlEnvelope(r)
	if err != nil {
		return Hello{}, err
	}
	if env.Type != controlTypeHello || env.Hello == nil {
		return Hello{}, fmt.Errorf("%w: unexpected control type %q", ErrInvalidHello, env.Type)
	}
	return *env.Hello, nil
}

func WriteHelloAck(w io.Writer, ack HelloAck) error {
	if err := ack.Validate(); err != nil {
		return err
	}
	return writeControlEnvelope(w, controlEnvelope{Type: controlTypeHelloAck, Ack: &ack})
}

func ReadHelloAck(r *bufio.Reader) (HelloAck, error) {
	env, err := readControlEnvelope(r)
	if err != nil {
		return HelloAck{}, err
	}
	if env.Type != controlTypeHelloAck || env.Ack == nil {
		return HelloAck{}, fmt.Errorf("%w: unexpected control type %q", ErrInvalidHelloAck, env.Type)
	}
	if err := env.Ack.Validate(); err != nil {
		return HelloAck{}, err
	}
	return *env.Ack, nil
}

func writeControlEnvelope(w io.Writer, env controlEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = w.Write(payload)
	return err
}

// readControlEnvelope reads one line. r may already hold the frames that
// follow, so callers keep reading frames from r afterwards.
func readControlEnvelope(r *bufio.Reader) (controlEnvelope, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > maxControlLine {
			return controlEnvelope{}, ErrControlMessageTooLarge
		}
		if err == nil {
			break
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return controlEnvelope{}, err
		}
	}
	var env controlEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return controlEnvelope{}, err
	}
	return env, nil
}
