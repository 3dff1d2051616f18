package schema

import (
	"errors"
	"testing"

	"github.com/danmuck/lazctl/internal/protocol/tlv"
	"github.com/danmuck/lazctl/internal/testutil/testlog"
)

func TestValidateCommandRequiresName(t *testing.T) {
	testlog.Start(t)
	err := Validate(MsgCommand, nil)
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.FieldID != FieldCommand || vErr.Reason != "missing required field" {
		t.Fatalf("unexpected validation error: %+v", vErr)
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	testlog.Start(t)
	fields := []tlv.Field{{ID: FieldCommand, Type: tlv.TypeToken, Value: []byte("ChooseTool")}}
	err := Validate(MsgCommand, fields)
	var vErr ValidationError
	if !errors.As(err, &vErr) || vErr.Reason != "type mismatch" {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestValidateReplyAcceptsAnyResultType(t *testing.T) {
	testlog.Start(t)
	for _, typ := range []uint8{tlv.TypeFloat, tlv.TypeColor, tlv.TypeList, tlv.TypeToken} {
		fields := []tlv.Field{
			{ID: FieldCommand, Type: tlv.TypeString, Value: []byte("ToolGetPenWidth")},
			{ID: FieldResult, Type: typ, Value: []byte{}},
		}
		if err := Validate(MsgReply, fields); err != nil {
			t.Fatalf("type %s: %v", tlv.TypeName(typ), err)
		}
	}
}

func TestValidateRejectsDuplicateSingletonAndBadArgument(t *testing.T) {
	testlog.Start(t)
	name := tlv.Field{ID: FieldCommand, Type: tlv.TypeString, Value: []byte("ToolWrite")}
	if err := Validate(MsgCommand, []tlv.Field{name, name}); err == nil {
		t.Fatalf("expected duplicate command field rejected")
	}
	arg := tlv.Field{ID: FieldArgument, Type: tlv.TypeString, Value: []byte("Text")}
	if err := Validate(MsgCommand, []tlv.Field{name, arg}); err == nil {
		t.Fatalf("expected non-list argument rejected")
	}
}

func TestValidateUnknownMessageType(t *testing.T) {
	testlog.Start(t)
	if err := Validate(99, nil); err == nil {
		t.Fatalf("expected unknown message type rejected")
	}
	if got := MessageName(99); got != "message(99)" {
		t.Fatalf("unexpected name: %q", got)
	}
	if err := Validate(MsgSync, nil); err != nil {
		t.Fatalf("sync should have no required fields: %v", err)
	}
}
