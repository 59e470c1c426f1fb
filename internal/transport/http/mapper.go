package http

import (
	"encoding/json"

	"github.com/mavihs13/edunet-realtime/internal/core"
	"github.com/mavihs13/edunet-realtime/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.User == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "userId is required"}, nil
		}
		return &core.Command{Kind: core.CommandJoin, User: join.User}, nil, nil

	case proto.InboundTypeJoinPost, proto.InboundTypeLeavePost:
		var post proto.PostData
		if err := json.Unmarshal(inbound.Data, &post); err != nil {
			return nil, nil, err
		}
		if post.Post == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "postId is required"}, nil
		}
		kind := core.CommandJoinPost
		if inbound.Type == proto.InboundTypeLeavePost {
			kind = core.CommandLeavePost
		}
		return &core.Command{Kind: kind, Post: post.Post}, nil, nil

	case proto.InboundTypeTyping, proto.InboundTypeStopTyping:
		var typing proto.TypingData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil {
			return nil, nil, err
		}
		if typing.ReceiverID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "receiverId is required"}, nil
		}
		kind := core.CommandTyping
		if inbound.Type == proto.InboundTypeStopTyping {
			kind = core.CommandStopTyping
		}
		return &core.Command{Kind: kind, Receiver: typing.ReceiverID}, nil, nil

	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.ReceiverID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "receiverId is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandSendMessage,
			Receiver: msg.ReceiverID,
			Content:  msg.Content,
		}, nil, nil

	case proto.InboundTypeSendNotif:
		var notif proto.SendNotificationData
		if err := json.Unmarshal(inbound.Data, &notif); err != nil {
			return nil, nil, err
		}
		if notif.UserID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "userId is required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandSendNotification,
			User:      notif.UserID,
			NotifType: notif.Type,
			Title:     notif.Title,
			Content:   notif.Content,
		}, nil, nil

	case proto.InboundTypeMarkNotifRead:
		var mark proto.MarkNotificationReadData
		if err := json.Unmarshal(inbound.Data, &mark); err != nil {
			return nil, nil, err
		}
		if mark.NotificationID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "notificationId is required"}, nil
		}
		return &core.Command{
			Kind:           core.CommandMarkNotificationRead,
			NotificationID: mark.NotificationID,
		}, nil, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func messageData(msg *core.Message, uncertain bool) proto.MessageData {
	return proto.MessageData{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		Read:       msg.Read,
		TS:         msg.CreatedAt.Unix(),
		Uncertain:  uncertain,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUserOnline:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserOnline,
			Data:  proto.PresenceData{UserID: event.User},
		}
	case core.EventUserOffline:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserOffline,
			Data:  proto.PresenceData{UserID: event.User},
		}
	case core.EventNewMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewMessage,
			Data:  messageData(event.Message, false),
		}
	case core.EventMessageSent:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageSent,
			Data:  messageData(event.Message, event.Uncertain),
		}
	case core.EventNewNotification:
		n := event.Notification
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewNotification,
			Data: proto.NotificationData{
				ID:      n.ID,
				UserID:  n.UserID,
				Type:    n.Type,
				Title:   n.Title,
				Content: n.Content,
				Read:    n.Read,
				TS:      n.CreatedAt.Unix(),
			},
		}
	case core.EventUserTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserTyping,
			Data:  proto.TypingEventData{UserID: event.User},
		}
	case core.EventUserStopTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserStopTyping,
			Data:  proto.TypingEventData{UserID: event.User},
		}
	case core.EventNotificationRead:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNotificationRead,
			Data:  proto.NotificationReadData{NotificationID: event.NotificationID},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
