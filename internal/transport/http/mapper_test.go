package http

import (
	"encoding/json"
	"testing"

	"github.com/huddlehq/huddle-server/internal/core"
	"github.com/huddlehq/huddle-server/internal/proto"
)

func TestInboundToCommand(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		data     string
		wantKind core.CommandKind
		wantNil  bool
		wantCode string
	}{
		{name: "announce string", typ: proto.InboundTypeAnnounceIdentity, data: `"alice"`, wantKind: core.CommandAnnounceIdentity},
		{name: "announce object", typ: proto.InboundTypeAnnounceIdentity, data: `{"userId":"alice"}`, wantKind: core.CommandAnnounceIdentity},
		{name: "announce empty", typ: proto.InboundTypeAnnounceIdentity, data: `{}`, wantNil: true},
		{name: "announce null", typ: proto.InboundTypeAnnounceIdentity, data: `null`, wantNil: true},
		{name: "announce number", typ: proto.InboundTypeAnnounceIdentity, data: `7`, wantNil: true},
		{name: "call with string data", typ: proto.InboundTypeRequestCall, data: `"bob"`, wantNil: true},
		{name: "board with array data", typ: proto.InboundTypeCardMoved, data: `[1,2]`, wantNil: true},
		{name: "signaling", typ: proto.InboundTypeAnnounceSignaling, data: `{"userId":"a","signalingId":"p"}`, wantKind: core.CommandAnnounceSignaling},
		{name: "signaling without id", typ: proto.InboundTypeAnnounceSignaling, data: `{"userId":"a"}`, wantNil: true},
		{name: "fetch", typ: proto.InboundTypeFetchSignaling, data: `{"targetUserId":"b"}`, wantKind: core.CommandFetchSignaling},
		{name: "request call", typ: proto.InboundTypeRequestCall, data: `{"targetUserId":"b"}`, wantKind: core.CommandRequestCall},
		{name: "accept call", typ: proto.InboundTypeAcceptCall, data: `{"targetUserId":"b"}`, wantKind: core.CommandAcceptCall},
		{name: "end call", typ: proto.InboundTypeEndCall, data: `{"targetUserId":"b"}`, wantKind: core.CommandEndCall},
		{name: "reject call", typ: proto.InboundTypeRejectCall, data: `{"targetUserId":"b"}`, wantKind: core.CommandRejectCall},
		{name: "call without target", typ: proto.InboundTypeRequestCall, data: `{}`, wantNil: true},
		{name: "signal error", typ: proto.InboundTypeSignalError, data: `{"targetUserId":"b","error":"ice"}`, wantKind: core.CommandSignalError},
		{name: "annotation", typ: proto.InboundTypeRelayAnnotation, data: `{"targetUserId":"b","payload":{}}`, wantKind: core.CommandRelayAnnotation},
		{name: "join string", typ: proto.InboundTypeJoinRoom, data: `"general"`, wantKind: core.CommandJoinRoom},
		{name: "leave object", typ: proto.InboundTypeLeaveRoom, data: `{"roomId":"general"}`, wantKind: core.CommandLeaveRoom},
		{name: "join bare prefix", typ: proto.InboundTypeJoinRoom, data: `"dm-"`, wantNil: true},
		{name: "message", typ: proto.InboundTypeSendMessage, data: `{"roomId":"general","content":"hi"}`, wantKind: core.CommandSendMessage},
		{name: "message without room", typ: proto.InboundTypeSendMessage, data: `{"content":"hi"}`, wantNil: true},
		{name: "board", typ: proto.InboundTypeCardDeleted, data: `{"boardId":"b1","cardId":"c1"}`, wantKind: core.CommandBoardMutation},
		{name: "board without id", typ: proto.InboundTypeCardDeleted, data: `{"cardId":"c1"}`, wantNil: true},
		{name: "unknown", typ: "dance", data: `{}`, wantCode: core.ErrCodeUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, protoErr := inboundToCommand(proto.Inbound{Type: tt.typ, Data: json.RawMessage(tt.data)})
			switch {
			case tt.wantCode != "":
				if protoErr == nil || protoErr.Code != tt.wantCode {
					t.Fatalf("error = %+v, want code %s", protoErr, tt.wantCode)
				}
			case tt.wantNil:
				if cmd != nil || protoErr != nil {
					t.Fatalf("expected ignored event, got %+v %+v", cmd, protoErr)
				}
			default:
				if protoErr != nil || cmd == nil {
					t.Fatalf("unexpected result: %+v %+v", cmd, protoErr)
				}
				if cmd.Kind != tt.wantKind {
					t.Fatalf("kind = %v, want %v", cmd.Kind, tt.wantKind)
				}
			}
		})
	}
}

func TestAnnotationWithoutPayloadForwardsData(t *testing.T) {
	data := `{"targetUserId":"b","pathData":"M0 0 L1 1"}`
	cmd, _ := inboundToCommand(proto.Inbound{Type: proto.InboundTypeRelayAnnotation, Data: json.RawMessage(data)})
	if cmd == nil {
		t.Fatal("expected command")
	}
	if raw, ok := cmd.Payload.(json.RawMessage); !ok || string(raw) != data {
		t.Fatalf("payload = %v, want whole data object", cmd.Payload)
	}
}

func TestMessageFieldsRoundTrip(t *testing.T) {
	cmd, _ := inboundToCommand(proto.Inbound{
		Type: proto.InboundTypeSendMessage,
		Data: json.RawMessage(`{"roomId":"dm-bob","content":"hi","sentAt":1700000000123,"meta":{"x":1}}`),
	})
	if cmd == nil || !cmd.Message.Room.IsDirect() || cmd.Message.Room.Recipient() != "bob" {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	msg := cmd.Message
	msg.Room = core.DirectRoom("alice")
	out, err := json.Marshal(messageData(msg))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"content":"hi","meta":{"x":1},"roomId":"dm-alice","sentAt":1700000000123}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestOutboundFromEvent(t *testing.T) {
	ev := &core.Event{Kind: core.EventSignalingIdentity, RequestID: "r1", Lookup: &core.Lookup{Online: true, Conn: "c1", Signaling: "p1"}}
	out := outboundFromEvent(ev)
	if out.Type != proto.OutboundTypeAck || out.ID != "r1" || out.Event != proto.InboundTypeFetchSignaling {
		t.Fatalf("unexpected ack: %+v", out)
	}

	out = outboundFromEvent(&core.Event{Kind: core.EventCardUpdated, Payload: json.RawMessage(`{"boardId":"b"}`)})
	if out.Event != proto.EventCardUpdated {
		t.Fatalf("event = %s", out.Event)
	}

	out = outboundFromEvent(&core.Event{Kind: core.EventCallEnded, Call: &core.CallEvent{From: "alice"}})
	if data, ok := out.Data.(proto.EventUserRef); !ok || data.UserID != "alice" {
		t.Fatalf("unexpected call_ended data: %+v", out.Data)
	}
}
