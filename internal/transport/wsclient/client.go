// Package wsclient is the bot's websocket connection to the game server:
// dial, HELLO/WELCOME handshake, typed reads, act writes.
package wsclient

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gorilla/websocket"

	"navbot/internal/protocol"
)

type Client struct {
	conn *websocket.Conn
	log  *log.Logger
}

// Dial connects to the server, sends HELLO and waits for the WELCOME.
func Dial(url, agentName string, logger *log.Logger) (*Client, *protocol.WelcomeMsg, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{conn: conn, log: logger}

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       agentName,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	}
	if err := conn.WriteJSON(hello); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("send HELLO: %w", err)
	}

	welcome, err := c.awaitWelcome()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return c, welcome, nil
}

func (c *Client) awaitWelcome() (*protocol.WelcomeMsg, error) {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read WELCOME: %w", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				return nil, fmt.Errorf("decode WELCOME: %w", err)
			}
			return &w, nil
		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				return nil, fmt.Errorf("decode ERROR: %w", err)
			}
			return nil, fmt.Errorf("server rejected HELLO: %s %s", e.Code, e.Message)
		default:
			c.log.Printf("ignoring %s before WELCOME", base.Type)
		}
	}
}

// ReadMessage blocks for the next server message and returns its routing
// header plus the raw payload.
func (c *Client) ReadMessage() (protocol.BaseMessage, []byte, error) {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return protocol.BaseMessage{}, nil, err
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.BaseMessage{}, msg, fmt.Errorf("decode message: %w", err)
	}
	return base, msg, nil
}

func (c *Client) SendAct(act protocol.ActMsg) error {
	return c.conn.WriteJSON(act)
}

// Close tears down the connection; it also unblocks a pending ReadMessage.
func (c *Client) Close() error {
	return c.conn.Close()
}
