package gateway

import (
	"bufio"
	"encoding/binary"
	"io"
	"strings"

	"code.vegaprotocol.io/venue/engine"
	"code.vegaprotocol.io/venue/registry"
	"code.vegaprotocol.io/venue/types"

	"github.com/pkg/errors"
)

// Wire layout, all integers big endian. Every message is preceded by a
// single length byte.
const (
	cmdExecute = 0
	cmdStatus  = 2
	cmdCancel  = 3

	cmdMask  = 0x03
	sideMask = 0x04

	executeLen = 26
	lookupLen  = 13

	tagFilled          = 0
	tagPartiallyFilled = 1
	tagWaiting         = 2
	tagRejected        = 3
	tagCanceled        = 4

	maxFrameLen  = 255
	maxReasonLen = maxFrameLen - 10
)

var (
	ErrInvalidFrame     = errors.New("invalid frame")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrUnknownOrderType = errors.New("unknown order type")
	ErrUnknownStatus    = errors.New("unknown status")
	ErrFrameTooLarge    = errors.New("frame too large")
)

// Request is a decoded client message.
type Request struct {
	Type       engine.CommandType
	AccountID  types.AccountID
	Submission types.OrderSubmission
	OrderID    types.OrderID
}

// Command turns the request into an engine command replying on reply.
func (r Request) Command(reply chan<- engine.Result) engine.Command {
	switch r.Type {
	case engine.CommandStatus:
		return engine.NewStatus(r.OrderID, reply)
	case engine.CommandCancel:
		return engine.NewCancel(r.OrderID, reply)
	default:
		return engine.NewExecute(r.Submission, reply)
	}
}

// ReadFrame reads one length prefixed payload.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrInvalidFrame
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes payload preceded by its length.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 || len(payload) > maxFrameLen {
		return ErrFrameTooLarge
	}
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, byte(len(payload)))
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}

// DecodeRequest parses a request payload.
func DecodeRequest(p []byte) (Request, error) {
	if len(p) < 5 {
		return Request{}, errors.Wrap(ErrInvalidFrame, "request too short")
	}
	req := Request{
		AccountID: types.AccountID(binary.BigEndian.Uint32(p[1:5])),
	}

	switch p[0] & cmdMask {
	case cmdExecute:
		if len(p) != executeLen {
			return Request{}, errors.Wrapf(ErrInvalidFrame, "execute payload of %d bytes", len(p))
		}
		typ := types.OrderType(p[5])
		if !typ.IsValid() {
			return Request{}, ErrUnknownOrderType
		}
		side := types.SideBuy
		if p[0]&sideMask != 0 {
			side = types.SideSell
		}
		req.Type = engine.CommandExecute
		req.Submission = types.OrderSubmission{
			AccountID: req.AccountID,
			Ticker:    strings.TrimRight(string(p[6:10]), " \x00"),
			Type:      typ,
			Side:      side,
			Price:     binary.BigEndian.Uint64(p[10:18]),
			Size:      binary.BigEndian.Uint64(p[18:26]),
		}
	case cmdStatus, cmdCancel:
		if len(p) != lookupLen {
			return Request{}, errors.Wrapf(ErrInvalidFrame, "lookup payload of %d bytes", len(p))
		}
		req.Type = engine.CommandStatus
		if p[0]&cmdMask == cmdCancel {
			req.Type = engine.CommandCancel
		}
		req.OrderID = types.OrderID(binary.BigEndian.Uint64(p[5:13]))
	default:
		return Request{}, ErrUnknownCommand
	}
	return req, nil
}

// EncodeRequest renders a request payload, it is the inverse of DecodeRequest.
func EncodeRequest(r Request) ([]byte, error) {
	switch r.Type {
	case engine.CommandExecute:
		if len(r.Submission.Ticker) > registry.MaxTickerLen {
			return nil, registry.ErrTickerTooLong
		}
		p := make([]byte, executeLen)
		p[0] = cmdExecute
		if r.Submission.Side == types.SideSell {
			p[0] |= sideMask
		}
		binary.BigEndian.PutUint32(p[1:5], uint32(r.AccountID))
		p[5] = byte(r.Submission.Type)
		copy(p[6:10], "    ")
		copy(p[6:10], r.Submission.Ticker)
		binary.BigEndian.PutUint64(p[10:18], r.Submission.Price)
		binary.BigEndian.PutUint64(p[18:26], r.Submission.Size)
		return p, nil
	case engine.CommandStatus, engine.CommandCancel:
		p := make([]byte, lookupLen)
		p[0] = cmdStatus
		if r.Type == engine.CommandCancel {
			p[0] = cmdCancel
		}
		binary.BigEndian.PutUint32(p[1:5], uint32(r.AccountID))
		binary.BigEndian.PutUint64(p[5:13], uint64(r.OrderID))
		return p, nil
	default:
		return nil, ErrUnknownCommand
	}
}

// EncodeStatus renders a status payload. Rejection reasons are truncated to
// fit a single frame.
func EncodeStatus(s types.OrderStatus) ([]byte, error) {
	p := make([]byte, 9, 25)
	binary.BigEndian.PutUint64(p[1:9], uint64(s.OrderID))

	switch s.Type {
	case types.StatusFilled:
		p[0] = tagFilled
		p = binary.BigEndian.AppendUint64(p, s.Cost)
	case types.StatusPartiallyFilled:
		p[0] = tagPartiallyFilled
		p = binary.BigEndian.AppendUint64(p, s.Filled)
		p = binary.BigEndian.AppendUint64(p, s.Cost)
	case types.StatusWaiting:
		p[0] = tagWaiting
	case types.StatusRejected:
		p[0] = tagRejected
		reason := s.Reason
		if len(reason) > maxReasonLen {
			reason = reason[:maxReasonLen]
		}
		p = append(p, byte(len(reason)))
		p = append(p, reason...)
	case types.StatusCanceled:
		p[0] = tagCanceled
	default:
		return nil, ErrUnknownStatus
	}
	return p, nil
}

// DecodeStatus parses a status payload, it is the inverse of EncodeStatus.
func DecodeStatus(p []byte) (types.OrderStatus, error) {
	if len(p) < 9 {
		return types.OrderStatus{}, errors.Wrap(ErrInvalidFrame, "status too short")
	}
	id := types.OrderID(binary.BigEndian.Uint64(p[1:9]))
	rest := p[9:]

	switch p[0] {
	case tagFilled:
		if len(rest) != 8 {
			return types.OrderStatus{}, ErrInvalidFrame
		}
		return types.NewFilled(id, binary.BigEndian.Uint64(rest)), nil
	case tagPartiallyFilled:
		if len(rest) != 16 {
			return types.OrderStatus{}, ErrInvalidFrame
		}
		return types.NewPartiallyFilled(id, binary.BigEndian.Uint64(rest[:8]), binary.BigEndian.Uint64(rest[8:])), nil
	case tagWaiting:
		return types.NewWaiting(id), nil
	case tagRejected:
		if len(rest) < 1 || len(rest[1:]) != int(rest[0]) {
			return types.OrderStatus{}, ErrInvalidFrame
		}
		return types.NewRejected(id, string(rest[1:])), nil
	case tagCanceled:
		return types.NewCanceled(id), nil
	default:
		return types.OrderStatus{}, ErrUnknownStatus
	}
}
