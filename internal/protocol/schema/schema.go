package schema

import (
	"fmt"

	"github.com/danmuck/lazctl/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// Message type IDs from the wire contract.
const (
	MsgCommand uint32 = 1
	MsgReply   uint32 = 2
	MsgError   uint32 = 3
	MsgSync    uint32 = 4
	MsgSyncAck uint32 = 5
)

// Field IDs from the wire contract.
const (
	FieldCommand     uint16 = 1
	FieldArgument    uint16 = 2
	FieldResult      uint16 = 3
	FieldErrorCode   uint16 = 4
	FieldErrorDetail uint16 = 5
)

// Argument element ids inside a FieldArgument list.
const (
	ArgName  uint16 = 0
	ArgValue uint16 = 1
)

// TypeAny accepts any field type for a requirement.
const TypeAny uint8 = 0

type Requirement struct {
	ID   uint16
	Type uint8
}

type ValidationError struct {
	MessageType uint32
	FieldID     uint16
	Reason      string
}

func (e ValidationError) Error() string {
	if e.FieldID == 0 {
		return fmt.Sprintf("schema: message_type=%d: %s", e.MessageType, e.Reason)
	}
	return fmt.Sprintf("schema: message_type=%d field=%d: %s", e.MessageType, e.FieldID, e.Reason)
}

var requirements = map[uint32][]Requirement{
	MsgCommand: {
		{FieldCommand, tlv.TypeString},
	},
	MsgReply: {
		{FieldCommand, tlv.TypeString},
		{FieldResult, TypeAny},
	},
	MsgError: {
		{FieldCommand, tlv.TypeString},
		{FieldErrorCode, tlv.TypeU32},
		{FieldErrorDetail, tlv.TypeString},
	},
	MsgSync:    {},
	MsgSyncAck: {},
}

// repeatable lists field ids that may appear more than once per message.
var repeatable = map[uint16]bool{
	FieldArgument: true,
}

// MessageName returns a readable name for a message type.
func MessageName(messageType uint32) string {
	switch messageType {
	case MsgCommand:
		return "command"
	case MsgReply:
		return "reply"
	case MsgError:
		return "error"
	case MsgSync:
		return "sync"
	case MsgSyncAck:
		return "sync.ack"
	default:
		return fmt.Sprintf("message(%d)", messageType)
	}
}

// Validate enforces required fields and required field types for a message type.
// Unknown fields are ignored.
func Validate(messageType uint32, fields []tlv.Field) error {
	log.Trace().Uint32("message_type", messageType).Int("fields", len(fields)).Msg("schema.Validate")
	reqs, ok := requirements[messageType]
	if !ok {
		log.Error().Uint32("message_type", messageType).Msg("schema.Validate unknown message_type")
		return ValidationError{MessageType: messageType, Reason: "unknown message_type"}
	}
	for _, req := range reqs {
		matches := tlv.GetFields(fields, req.ID)
		if len(matches) == 0 {
			log.Error().
				Uint32("message_type", messageType).
				Uint16("field_id", req.ID).
				Msg("schema.Validate missing field")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "missing required field"}
		}
		if len(matches) > 1 && !repeatable[req.ID] {
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "duplicate field"}
		}
		if req.Type != TypeAny && matches[0].Type != req.Type {
			log.Error().
				Uint32("message_type", messageType).
				Uint16("field_id", req.ID).
				Str("got", tlv.TypeName(matches[0].Type)).
				Str("want", tlv.TypeName(req.Type)).
				Msg("schema.Validate type mismatch")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "type mismatch"}
		}
	}
	for _, f := range tlv.GetFields(fields, FieldArgument) {
		if f.Type != tlv.TypeList {
			return ValidationError{MessageType: messageType, FieldID: FieldArgument, Reason: "argument must be a list"}
		}
	}
	return nil
}
