package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/huddlehq/huddle-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "optional JWT appended as ?token=")
	user := flag.String("user", "cli-user", "user id to announce")
	room := flag.String("room", "general", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	url := *addr
	if *token != "" {
		url += "?token=" + *token
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeAnnounceIdentity, proto.IdentityData{UserID: *user}); err != nil {
		return err
	}
	if err := send(ctx, conn, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: *room}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type messages and press Enter to send. /dm <user> <text> sends a direct message, /join <room> switches rooms. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *room)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if out.Error != nil {
			fmt.Printf("error %s: %s\n", out.Error.Code, out.Error.Msg)
			continue
		}

		switch out.Event {
		case proto.EventMessage:
			var msg map[string]any
			if err := json.Unmarshal(out.Data, &msg); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			fmt.Printf("[%v] %v\n", msg[proto.FieldRoomID], msg[proto.FieldContent])
		case proto.EventUserConnected, proto.EventUserDisconnected:
			var evt proto.EventUserRef
			if err := json.Unmarshal(out.Data, &evt); err != nil {
				log.Printf("unmarshal %s: %v", out.Event, err)
				continue
			}
			fmt.Printf("* %s %s\n", evt.UserID, strings.TrimPrefix(out.Event, "user_"))
		case proto.EventOnlineUsers:
			var users []proto.OnlineUser
			if err := json.Unmarshal(out.Data, &users); err != nil {
				log.Printf("unmarshal snapshot: %v", err)
				continue
			}
			names := make([]string, 0, len(users))
			for _, u := range users {
				names = append(names, u.UserID)
			}
			fmt.Printf("* online: %s\n", strings.Join(names, ", "))
		case proto.EventUserStatusChange:
			// user_connected and user_disconnected already cover these
		default:
			fmt.Printf("event=%s data=%s\n", out.Event, out.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, room string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var err error
			switch {
			case strings.HasPrefix(text, "/join "):
				next := strings.TrimSpace(strings.TrimPrefix(text, "/join "))
				if err = send(ctx, conn, proto.InboundTypeLeaveRoom, proto.RoomData{RoomID: room}); err == nil {
					err = send(ctx, conn, proto.InboundTypeJoinRoom, proto.RoomData{RoomID: next})
					room = next
				}
			case strings.HasPrefix(text, "/dm "):
				target, content, found := strings.Cut(strings.TrimPrefix(text, "/dm "), " ")
				if !found {
					fmt.Println("usage: /dm <user> <text>")
					continue
				}
				err = send(ctx, conn, proto.InboundTypeSendMessage, map[string]any{
					proto.FieldRoomID:  "dm-" + target,
					proto.FieldContent: content,
				})
			default:
				err = send(ctx, conn, proto.InboundTypeSendMessage, map[string]any{
					proto.FieldRoomID:  room,
					proto.FieldContent: text,
				})
			}
			if err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
