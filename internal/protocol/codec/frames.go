package codec

import (
	"fmt"

	"github.com/danmuck/lazctl/internal/protocol/frame"
	"github.com/danmuck/lazctl/internal/protocol/schema"
	"github.com/danmuck/lazctl/internal/protocol/tlv"
)

// Envelope is a decoded host-to-client frame.
type Envelope struct {
	MessageID   uint64
	MessageType uint32
	// Command is the semantic command name the envelope answers.
	Command   string
	Value     Value
	ErrCode   uint32
	ErrDetail string
}

func (e Envelope) IsError() bool {
	return e.MessageType == schema.MsgError
}

// Reply returns the envelope as a Reply. Only meaningful for MsgReply.
func (e Envelope) Reply() Reply {
	return Reply{Command: e.Command, Value: e.Value}
}

// EncodeCommandFrame builds the wire frame for cmd. The query flag mirrors
// the name suffix, which is kept verbatim in FieldCommand.
func EncodeCommandFrame(messageID uint64, cmd Command) (frame.Frame, error) {
	if err := cmd.Validate(); err != nil {
		return frame.Frame{}, err
	}
	fields := make([]tlv.Field, 0, 1+len(cmd.Args))
	fields = append(fields, tlv.Field{ID: schema.FieldCommand, Type: tlv.TypeString, Value: []byte(cmd.Name)})
	for _, a := range cmd.Args {
		v, err := encodeValue(schema.ArgValue, a.Value)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("arg %s: %w", a.Name, err)
		}
		pair := tlv.EncodeFields([]tlv.Field{
			{ID: schema.ArgName, Type: tlv.TypeString, Value: []byte(a.Name)},
			v,
		})
		fields = append(fields, tlv.Field{ID: schema.FieldArgument, Type: tlv.TypeList, Value: pair})
	}
	var flags uint32
	if cmd.IsQuery() {
		flags |= frame.FlagQuery
	}
	return buildFrame(messageID, schema.MsgCommand, flags, fields)
}

// DecodeCommandFrame is the host-side inverse of EncodeCommandFrame.
func DecodeCommandFrame(f frame.Frame) (Command, error) {
	if f.Header.MessageType != schema.MsgCommand {
		return Command{}, fmt.Errorf("%w: %s", ErrUnexpectedEnvelope, schema.MessageName(f.Header.MessageType))
	}
	fields, err := parseFields(f)
	if err != nil {
		return Command{}, err
	}
	nameField, _ := tlv.GetField(fields, schema.FieldCommand)
	cmd := Command{Name: string(nameField.Value)}
	if cmd.IsQuery() != f.Header.IsQuery() {
		return Command{}, &DecodeError{Want: "command", Reason: fmt.Sprintf("query flag disagrees with name %q", cmd.Name)}
	}
	for i, af := range tlv.GetFields(fields, schema.FieldArgument) {
		pair, err := tlv.DecodeFields(af.Value)
		if err != nil {
			return Command{}, decodeFailure(fmt.Sprintf("argument %d", i), err)
		}
		nf, ok := tlv.GetField(pair, schema.ArgName)
		if !ok || nf.Type != tlv.TypeString {
			return Command{}, &DecodeError{Want: "argument", Reason: fmt.Sprintf("argument %d missing name", i)}
		}
		vf, ok := tlv.GetField(pair, schema.ArgValue)
		if !ok {
			return Command{}, &DecodeError{Want: "argument", Reason: fmt.Sprintf("argument %s missing value", nf.Value)}
		}
		v, err := decodeValue(vf)
		if err != nil {
			return Command{}, err
		}
		cmd.Args = append(cmd.Args, Arg{Name: string(nf.Value), Value: v})
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, decodeFailure("command", err)
	}
	return cmd, nil
}

// EncodeReplyFrame answers a query. command may carry the query suffix; the
// semantic name is what goes on the wire.
func EncodeReplyFrame(messageID uint64, command string, v Value) (frame.Frame, error) {
	result, err := encodeValue(schema.FieldResult, v)
	if err != nil {
		return frame.Frame{}, err
	}
	fields := []tlv.Field{
		{ID: schema.FieldCommand, Type: tlv.TypeString, Value: []byte(SemanticName(command))},
		result,
	}
	return buildFrame(messageID, schema.MsgReply, frame.FlagIsResponse, fields)
}

// EncodeErrorFrame reports a host-side failure for command.
func EncodeErrorFrame(messageID uint64, command string, code uint32, detail string) (frame.Frame, error) {
	fields := []tlv.Field{
		{ID: schema.FieldCommand, Type: tlv.TypeString, Value: []byte(SemanticName(command))},
		{ID: schema.FieldErrorCode, Type: tlv.TypeU32, Value: tlv.PutU32(code)},
		{ID: schema.FieldErrorDetail, Type: tlv.TypeString, Value: []byte(detail)},
	}
	return buildFrame(messageID, schema.MsgError, frame.FlagIsResponse|frame.FlagIsError, fields)
}

// EncodeSyncFrame builds a sync probe. The host answers with a sync ack
// carrying the same message id once everything before it has run.
func EncodeSyncFrame(messageID uint64) (frame.Frame, error) {
	return buildFrame(messageID, schema.MsgSync, 0, nil)
}

func EncodeSyncAckFrame(messageID uint64) (frame.Frame, error) {
	return buildFrame(messageID, schema.MsgSyncAck, frame.FlagIsResponse, nil)
}

// DecodeEnvelope decodes any host-to-client frame: reply, error or sync ack.
func DecodeEnvelope(f frame.Frame) (Envelope, error) {
	env := Envelope{MessageID: f.Header.MessageID, MessageType: f.Header.MessageType}
	switch f.Header.MessageType {
	case schema.MsgReply, schema.MsgError, schema.MsgSyncAck:
	default:
		return env, fmt.Errorf("%w: %s", ErrUnexpectedEnvelope, schema.MessageName(f.Header.MessageType))
	}
	fields, err := parseFields(f)
	if err != nil {
		return env, err
	}
	if f.Header.MessageType == schema.MsgSyncAck {
		return env, nil
	}
	nameField, _ := tlv.GetField(fields, schema.FieldCommand)
	env.Command = string(nameField.Value)

	if f.Header.MessageType == schema.MsgError {
		codeField, _ := tlv.GetField(fields, schema.FieldErrorCode)
		code, err := tlv.U32FromBytes(codeField.Value)
		if err != nil {
			return env, decodeFailure("error code", err)
		}
		detailField, _ := tlv.GetField(fields, schema.FieldErrorDetail)
		env.ErrCode = code
		env.ErrDetail = string(detailField.Value)
		return env, nil
	}

	resultField, _ := tlv.GetField(fields, schema.FieldResult)
	v, err := decodeValue(resultField)
	if err != nil {
		return env, err
	}
	env.Value = v
	return env, nil
}

// DecodeReplyFrame is DecodeEnvelope restricted to reply and error frames.
func DecodeReplyFrame(f frame.Frame) (Envelope, error) {
	if f.Header.MessageType == schema.MsgSyncAck {
		return Envelope{MessageID: f.Header.MessageID, MessageType: f.Header.MessageType},
			fmt.Errorf("%w: %s", ErrUnexpectedEnvelope, schema.MessageName(f.Header.MessageType))
	}
	return DecodeEnvelope(f)
}

func buildFrame(messageID uint64, messageType uint32, flags uint32, fields []tlv.Field) (frame.Frame, error) {
	if err := schema.Validate(messageType, fields); err != nil {
		return frame.Frame{}, err
	}
	return frame.Frame{
		Header: frame.Header{
			MessageID:   messageID,
			MessageType: messageType,
			Flags:       flags,
		},
		Payload: tlv.EncodeFields(fields),
	}, nil
}

func parseFields(f frame.Frame) ([]tlv.Field, error) {
	fields, err := tlv.DecodeFields(f.Payload)
	if err != nil {
		return nil, decodeFailure(schema.MessageName(f.Header.MessageType), err)
	}
	if err := schema.Validate(f.Header.MessageType, fields); err != nil {
		return nil, decodeFailure(schema.MessageName(f.Header.MessageType), err)
	}
	return fields, nil
}
