// Package net implements the TCP driver: a binary wire protocol carrying
// Order events in and MatchResult/error reports back out. The wire's
// order_id is the caller-supplied uint64 carried on every Order; uuid
// values only ever identify a connection's session for log correlation,
// never an order (see server.go).
package net

import (
	"encoding/binary"
	"errors"
	"math"

	"fenrir/internal/common"
)

// MessageType distinguishes request frames on the wire.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	OrderEvent
)

// ReportType distinguishes response frames on the wire.
type ReportType byte

const (
	ExecutionReport ReportType = iota
	ErrorReport
)

var (
	ErrMessageTooShort  = errors.New("message too short")
	ErrInvalidMessage   = errors.New("invalid message type")
	ErrInstrumentTooBig = errors.New("instrument name too long for wire format")
)

const (
	messageHeaderLen   = 2
	orderEventBodyLen  = 8 + 8 + 8 + 8 + 1 + 1 + 1 + 1 // ts, id, qty, price, side, type, action, instrLen
	maxInstrumentBytes = 255
)

// EncodeOrderEvent serializes o as an OrderEvent request frame.
func EncodeOrderEvent(o common.Order) ([]byte, error) {
	if len(o.Instrument) > maxInstrumentBytes {
		return nil, ErrInstrumentTooBig
	}
	buf := make([]byte, messageHeaderLen+orderEventBodyLen+len(o.Instrument))
	binary.BigEndian.PutUint16(buf[0:2], uint16(OrderEvent))
	binary.BigEndian.PutUint64(buf[2:10], o.Timestamp)
	binary.BigEndian.PutUint64(buf[10:18], o.OrderID)
	binary.BigEndian.PutUint64(buf[18:26], o.Quantity)
	binary.BigEndian.PutUint64(buf[26:34], math.Float64bits(o.Price))
	buf[34] = byte(o.Side)
	buf[35] = byte(o.Type)
	buf[36] = byte(o.Action)
	buf[37] = byte(len(o.Instrument))
	copy(buf[38:], o.Instrument)
	return buf, nil
}

// DecodeMessage parses a request frame into an Order (for OrderEvent) or
// reports a plain heartbeat.
func DecodeMessage(msg []byte) (MessageType, common.Order, error) {
	if len(msg) < messageHeaderLen {
		return 0, common.Order{}, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[messageHeaderLen:]

	switch typeOf {
	case Heartbeat:
		return Heartbeat, common.Order{}, nil
	case OrderEvent:
		o, err := decodeOrderEvent(body)
		return OrderEvent, o, err
	default:
		return 0, common.Order{}, ErrInvalidMessage
	}
}

func decodeOrderEvent(body []byte) (common.Order, error) {
	if len(body) < orderEventBodyLen {
		return common.Order{}, ErrMessageTooShort
	}

	ts := binary.BigEndian.Uint64(body[0:8])
	id := binary.BigEndian.Uint64(body[8:16])
	qty := binary.BigEndian.Uint64(body[16:24])
	price := math.Float64frombits(binary.BigEndian.Uint64(body[24:32]))
	side := common.Side(body[32])
	orderType := common.OrderType(body[33])
	action := common.Action(body[34])
	instrLen := int(body[35])

	if len(body) < orderEventBodyLen+instrLen {
		return common.Order{}, ErrMessageTooShort
	}
	instrument := string(body[orderEventBodyLen : orderEventBodyLen+instrLen])

	if orderType == common.Market {
		return common.NewMarketOrder(ts, id, instrument, side, qty, action)
	}
	return common.NewLimitOrder(ts, id, instrument, side, qty, price, action)
}

const reportBodyLen = 1 + 8 + 8 + 8 + 8 + 1 + 1 + 1 + 1 + 8 + 8 + 8 + 1 // type, ts, id, qty, price, side, type, action, status, exeQty, exePrice, cp, instrLen

// EncodeExecutionReport serializes a MatchResult as an ExecutionReport frame.
func EncodeExecutionReport(r common.MatchResult) ([]byte, error) {
	if len(r.Instrument) > maxInstrumentBytes {
		return nil, ErrInstrumentTooBig
	}
	buf := make([]byte, reportBodyLen+len(r.Instrument))
	offset := encodeReportCommon(buf, ExecutionReport, r)
	copy(buf[offset:], r.Instrument)
	return buf, nil
}

// EncodeErrorReport serializes a processing error as an ErrorReport
// frame, appending the error text after the fixed body.
func EncodeErrorReport(orderID uint64, instrument string, cause error) ([]byte, error) {
	msg := cause.Error()
	if len(instrument) > maxInstrumentBytes || len(msg) > math.MaxUint16 {
		return nil, ErrInstrumentTooBig
	}
	buf := make([]byte, reportBodyLen+len(instrument)+2+len(msg))
	r := common.MatchResult{OrderID: orderID, Instrument: instrument, Status: common.Rejected}
	offset := encodeReportCommon(buf, ErrorReport, r)
	offset += copy(buf[offset:], instrument)
	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(msg)))
	offset += 2
	copy(buf[offset:], msg)
	return buf, nil
}

func encodeReportCommon(buf []byte, kind ReportType, r common.MatchResult) int {
	buf[0] = byte(kind)
	binary.BigEndian.PutUint64(buf[1:9], r.Timestamp)
	binary.BigEndian.PutUint64(buf[9:17], r.OrderID)
	binary.BigEndian.PutUint64(buf[17:25], r.Quantity)
	binary.BigEndian.PutUint64(buf[25:33], math.Float64bits(r.Price))
	buf[33] = byte(r.Side)
	buf[34] = byte(r.Type)
	buf[35] = byte(r.Action)
	buf[36] = byte(r.Status)
	binary.BigEndian.PutUint64(buf[37:45], r.ExecutedQuantity)
	binary.BigEndian.PutUint64(buf[45:53], math.Float64bits(r.ExecutionPrice))
	binary.BigEndian.PutUint64(buf[53:61], r.CounterpartyID)
	buf[61] = byte(len(r.Instrument))
	return reportBodyLen
}

// DecodeReport is the client-side counterpart to EncodeExecutionReport
// and EncodeErrorReport, used by test doubles and any Go client of the
// TCP driver.
func DecodeReport(buf []byte) (ReportType, common.MatchResult, string, error) {
	if len(buf) < reportBodyLen {
		return 0, common.MatchResult{}, "", ErrMessageTooShort
	}
	kind := ReportType(buf[0])
	r := common.MatchResult{
		Timestamp:        binary.BigEndian.Uint64(buf[1:9]),
		OrderID:          binary.BigEndian.Uint64(buf[9:17]),
		Quantity:         binary.BigEndian.Uint64(buf[17:25]),
		Price:            math.Float64frombits(binary.BigEndian.Uint64(buf[25:33])),
		Side:             common.Side(buf[33]),
		Type:             common.OrderType(buf[34]),
		Action:           common.Action(buf[35]),
		Status:           common.Status(buf[36]),
		ExecutedQuantity: binary.BigEndian.Uint64(buf[37:45]),
		ExecutionPrice:   math.Float64frombits(binary.BigEndian.Uint64(buf[45:53])),
		CounterpartyID:   binary.BigEndian.Uint64(buf[53:61]),
	}
	instrLen := int(buf[61])
	offset := reportBodyLen
	if len(buf) < offset+instrLen {
		return 0, common.MatchResult{}, "", ErrMessageTooShort
	}
	r.Instrument = string(buf[offset : offset+instrLen])
	offset += instrLen

	var errMsg string
	if kind == ErrorReport {
		if len(buf) < offset+2 {
			return 0, common.MatchResult{}, "", ErrMessageTooShort
		}
		errLen := int(binary.BigEndian.Uint16(buf[offset : offset+2]))
		offset += 2
		if len(buf) < offset+errLen {
			return 0, common.MatchResult{}, "", ErrMessageTooShort
		}
		errMsg = string(buf[offset : offset+errLen])
	}
	return kind, r, errMsg, nil
}
