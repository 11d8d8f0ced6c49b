// Command ws_chat is a development client for the pairline relay: it joins
// the user's room socket and bridges stdin lines to chat messages.
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

	"github.com/pairline/pairline-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	server := flag.String("server", "ws://localhost:8080", "server base URL")
	room := flag.Int64("room", 1, "assigned room id")
	token := flag.String("token", "", "bearer token")
	flag.Parse()

	if *token == "" {
		return errors.New("-token is required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	url := fmt.Sprintf("%s/rooms/%d/socket?token=%s", strings.TrimRight(*server, "/"), *room, *token)
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	go func() {
		for {
			var outbound proto.Outbound
			if readErr := wsjson.Read(ctx, conn, &outbound); readErr != nil {
				if ctx.Err() == nil {
					log.Printf("read: %v", readErr)
				}
				cancel()
				return
			}
			switch outbound.Type {
			case proto.OutboundTypeEvent:
				data, _ := json.Marshal(outbound.Data)
				var ev proto.EventMessage
				if json.Unmarshal(data, &ev) == nil {
					fmt.Printf("[%s] %s\n", ev.User, ev.Text)
				}
			case proto.OutboundTypeError:
				if outbound.Error != nil {
					fmt.Printf("error: %s (%s)\n", outbound.Error.Msg, outbound.Error.Code)
				}
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		payload, _ := json.Marshal(proto.MsgData{Text: text})
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeMsg, Data: payload}); writeErr != nil {
			return fmt.Errorf("send: %w", writeErr)
		}
	}
	return scanner.Err()
}
