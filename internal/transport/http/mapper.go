package http

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/huddlehq/huddle-server/internal/core"
	"github.com/huddlehq/huddle-server/internal/proto"
)

// errMissingField marks an inbound event whose data decoded but lacks a
// routing field.
var errMissingField = errors.New("missing required field")

var boardMutations = map[string]core.BoardMutation{
	proto.InboundTypeCardMoved:      core.CardMoved,
	proto.InboundTypeCardCreated:    core.CardCreated,
	proto.InboundTypeCardDeleted:    core.CardDeleted,
	proto.InboundTypeSectionUpdated: core.SectionUpdated,
	proto.InboundTypeSectionCreated: core.SectionCreated,
	proto.InboundTypeSectionDeleted: core.SectionDeleted,
}

var targetCommands = map[string]core.CommandKind{
	proto.InboundTypeRequestCall: core.CommandRequestCall,
	proto.InboundTypeAcceptCall:  core.CommandAcceptCall,
	proto.InboundTypeEndCall:     core.CommandEndCall,
	proto.InboundTypeRejectCall:  core.CommandRejectCall,
}

// inboundToCommand maps a client envelope to a hub command. Only an unknown
// type earns an error reply. Data that lacks a required field or has the
// wrong shape yields a nil command and a nil error: the event is ignored.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	cmd, err := decodeInbound(inbound)
	switch {
	case err == nil:
		return cmd, nil
	case errors.Is(err, errUnknownType):
		return nil, &proto.Error{Code: core.ErrCodeUnknownType, Msg: "unknown message type"}
	default:
		return nil, nil
	}
}

var errUnknownType = errors.New("unknown type")

func decodeInbound(inbound proto.Inbound) (*core.Command, error) {
	if kind, ok := targetCommands[inbound.Type]; ok {
		var data proto.TargetData
		if err := decodeObject(inbound.Data, &data); err != nil {
			return nil, err
		}
		if data.TargetUserID == "" {
			return nil, errMissingField
		}
		return &core.Command{Kind: kind, Target: core.UserID(data.TargetUserID)}, nil
	}
	if mutation, ok := boardMutations[inbound.Type]; ok {
		var data proto.BoardData
		if err := decodeObject(inbound.Data, &data); err != nil {
			return nil, err
		}
		if data.BoardID == "" {
			return nil, errMissingField
		}
		return &core.Command{
			Kind:    core.CommandBoardMutation,
			Board:   mutation,
			Room:    core.BoardRoom(data.BoardID),
			Payload: inbound.Data,
		}, nil
	}

	switch inbound.Type {
	case proto.InboundTypeAnnounceIdentity:
		var data proto.IdentityData
		user, err := decodeStringOr(inbound.Data, &data, func() string { return data.UserID })
		if err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandAnnounceIdentity, User: core.UserID(user)}, nil

	case proto.InboundTypeAnnounceSignaling:
		var data proto.SignalingData
		if err := decodeObject(inbound.Data, &data); err != nil {
			return nil, err
		}
		if data.UserID == "" || data.SignalingID == "" {
			return nil, errMissingField
		}
		return &core.Command{
			Kind:      core.CommandAnnounceSignaling,
			User:      core.UserID(data.UserID),
			Signaling: core.SignalingID(data.SignalingID),
		}, nil

	case proto.InboundTypeFetchSignaling:
		var data proto.TargetData
		if err := decodeObject(inbound.Data, &data); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:      core.CommandFetchSignaling,
			RequestID: inbound.ID,
			Target:    core.UserID(data.TargetUserID),
		}, nil

	case proto.InboundTypeSignalError:
		var data proto.SignalErrorData
		if err := decodeObject(inbound.Data, &data); err != nil {
			return nil, err
		}
		if data.TargetUserID == "" {
			return nil, errMissingField
		}
		return &core.Command{Kind: core.CommandSignalError, Target: core.UserID(data.TargetUserID), Error: data.Error}, nil

	case proto.InboundTypeRelayAnnotation:
		var data proto.AnnotationData
		if err := decodeObject(inbound.Data, &data); err != nil {
			return nil, err
		}
		if data.TargetUserID == "" {
			return nil, errMissingField
		}
		payload := data.Payload
		if len(payload) == 0 {
			payload = inbound.Data
		}
		return &core.Command{Kind: core.CommandRelayAnnotation, Target: core.UserID(data.TargetUserID), Payload: payload}, nil

	case proto.InboundTypeJoinRoom, proto.InboundTypeLeaveRoom:
		var data proto.RoomData
		roomID, err := decodeStringOr(inbound.Data, &data, func() string { return data.RoomID })
		if err != nil {
			return nil, err
		}
		room, ok := core.ParseRoom(roomID)
		if !ok {
			return nil, errMissingField
		}
		kind := core.CommandJoinRoom
		if inbound.Type == proto.InboundTypeLeaveRoom {
			kind = core.CommandLeaveRoom
		}
		return &core.Command{Kind: kind, Room: room}, nil

	case proto.InboundTypeSendMessage:
		msg, err := decodeMessage(inbound.Data)
		if err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandSendMessage, Message: msg}, nil

	default:
		return nil, errUnknownType
	}
}

// decodeObject decodes a JSON object. Absent or null data counts as a
// missing field rather than a protocol error.
func decodeObject(data json.RawMessage, v any) error {
	if isEmpty(data) {
		return errMissingField
	}
	return json.Unmarshal(data, v)
}

// decodeStringOr accepts either a bare JSON string or an object decoded into
// obj, from which field extracts the value.
func decodeStringOr(data json.RawMessage, obj any, field func() string) (string, error) {
	if isEmpty(data) {
		return "", errMissingField
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			return "", errMissingField
		}
		return s, nil
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return "", err
	}
	if v := field(); v != "" {
		return v, nil
	}
	return "", errMissingField
}

// decodeMessage keeps every field the client sent. Numbers stay json.Number
// so they are re-encoded exactly.
func decodeMessage(data json.RawMessage) (core.Message, error) {
	if isEmpty(data) {
		return core.Message{}, errMissingField
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return core.Message{}, err
	}

	roomID, _ := fields[proto.FieldRoomID].(string)
	room, ok := core.ParseRoom(roomID)
	if !ok {
		return core.Message{}, errMissingField
	}
	delete(fields, proto.FieldRoomID)

	msg := core.Message{Room: room}
	if content, ok := fields[proto.FieldContent].(string); ok {
		msg.Content = content
		delete(fields, proto.FieldContent)
	}
	if len(fields) > 0 {
		msg.Fields = fields
	}
	return msg, nil
}

func isEmpty(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

var boardEventNames = map[core.EventKind]string{
	core.EventCardUpdated:    proto.EventCardUpdated,
	core.EventNewCard:        proto.EventNewCard,
	core.EventSectionChanged: proto.EventSectionChanged,
	core.EventNewSection:     proto.EventNewSection,
	core.EventDeleteCard:     proto.EventDeleteCard,
	core.EventDeleteSection:  proto.EventDeleteSection,
}

func event(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func outboundFromEvent(ev *core.Event) proto.Outbound {
	if name, ok := boardEventNames[ev.Kind]; ok {
		return event(name, ev.Payload)
	}

	switch ev.Kind {
	case core.EventOnlineUsers:
		users := make([]proto.OnlineUser, 0, len(ev.Entries))
		for _, e := range ev.Entries {
			users = append(users, proto.OnlineUser{
				UserID:       string(e.User),
				ConnectionID: string(e.Conn),
				SignalingID:  string(e.Signaling),
			})
		}
		return event(proto.EventOnlineUsers, users)
	case core.EventUserConnected:
		return event(proto.EventUserConnected, proto.EventUserConnectedData{
			UserID:       string(ev.User),
			ConnectionID: string(ev.Conn),
			SignalingID:  string(ev.Signaling),
		})
	case core.EventUserStatusChange:
		return event(proto.EventUserStatusChange, proto.EventUserStatus{UserID: string(ev.User), Status: string(ev.Status)})
	case core.EventPeerUpdated:
		return event(proto.EventPeerUpdated, proto.EventPeerUpdatedData{UserID: string(ev.User), SignalingID: string(ev.Signaling)})
	case core.EventUserDisconnected:
		return event(proto.EventUserDisconnected, proto.EventUserRef{UserID: string(ev.User)})
	case core.EventSignalingIdentity:
		var res proto.SignalingIdentity
		if ev.Lookup != nil {
			res = proto.SignalingIdentity{
				SignalingID:  string(ev.Lookup.Signaling),
				IsOnline:     ev.Lookup.Online,
				ConnectionID: string(ev.Lookup.Conn),
			}
		}
		return proto.Outbound{Type: proto.OutboundTypeAck, ID: ev.RequestID, Event: proto.InboundTypeFetchSignaling, Data: res}
	case core.EventRoomMessage:
		return event(proto.EventMessage, messageData(ev.Message))
	case core.EventError:
		if ev.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{Type: proto.OutboundTypeError, ID: ev.RequestID, Error: &proto.Error{Code: ev.Error.Code, Msg: ev.Error.Message}}
	}

	call := ev.Call
	if call == nil {
		call = &core.CallEvent{}
	}
	switch ev.Kind {
	case core.EventIncomingCall:
		return event(proto.EventIncomingCall, proto.EventIncomingCallData{CallerID: string(call.From), CallerSignalingID: string(call.FromSignaling)})
	case core.EventCallAccepted:
		return event(proto.EventCallAccepted, proto.EventCallAcceptedData{AnswererID: string(call.From), AnswererSignalingID: string(call.FromSignaling)})
	case core.EventCallFailed:
		data := proto.EventCallFailedData{Error: call.Error}
		if ev.Error != nil {
			data.Message = ev.Error.Message
		}
		return event(proto.EventCallFailed, data)
	case core.EventCallEnded:
		return event(proto.EventCallEnded, proto.EventUserRef{UserID: string(call.From)})
	case core.EventCallRejected:
		return event(proto.EventCallRejected, proto.EventUserRef{UserID: string(call.From)})
	case core.EventAnnotation:
		return event(proto.EventAnnotation, proto.EventAnnotationData{FromUserID: string(call.From), Payload: call.Payload})
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

// messageData rebuilds the client's message object with the routed room id.
func messageData(msg core.Message) map[string]any {
	out := make(map[string]any, len(msg.Fields)+2)
	for k, v := range msg.Fields {
		out[k] = v
	}
	out[proto.FieldRoomID] = msg.Room.Key()
	if msg.Content != "" {
		out[proto.FieldContent] = msg.Content
	}
	return out
}
