package channel

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"MusicRoom/core/auth"
	"MusicRoom/logger"

	"github.com/gorilla/websocket"
)

var (
	// ErrConnection 通道建立失败（URL无法构造或凭证缺失）
	ErrConnection = errors.New("channel: connection failed")
	// ErrTransport 已建立通道上的帧收发失败
	ErrTransport = errors.New("channel: transport failure")
	// ErrDecoding 收到的帧不符合期望格式
	ErrDecoding = errors.New("channel: frame decoding failed")
	// ErrEncoding 出站消息无法序列化
	ErrEncoding = errors.New("channel: message encoding failed")
)

// 各逻辑主题的相对路径
const (
	TopicPlayer    = "ws/player/"
	TopicEvent     = "ws/event/"
	TopicPlaylists = "ws/playlists/"
)

// PlaylistTopic 单个歌单主题的相对路径
func PlaylistTopic(playlistID int64) string {
	return fmt.Sprintf("ws/playlist/%d/", playlistID)
}

// Channel 单个主题上的持久双向文本帧通道。
// 每个主题一条连接，只共享消息编解码格式。
type Channel struct {
	topic string
	conn  *websocket.Conn

	writeMu sync.Mutex // 保护并发写帧

	mu         sync.Mutex
	subscribed bool
}

// Open 建立指定主题的通道。凭证缺失或URL无法构造时直接失败，
// 不创建任何连接。
func Open(baseURL, topic string, creds auth.Provider, deviceID string) (*Channel, error) {
	token, err := creds.AccessToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base url: %v", ErrConnection, err)
	}

	rel, err := url.Parse(topic)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid topic %q: %v", ErrConnection, topic, err)
	}

	target := base.ResolveReference(rel)
	switch target.Scheme {
	case "ws", "wss":
	case "http":
		target.Scheme = "ws"
	case "https":
		target.Scheme = "wss"
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrConnection, target.Scheme)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	if deviceID != "" {
		header.Set("X-Device-Id", deviceID)
	}

	conn, _, err := websocket.DefaultDialer.Dial(target.String(), header)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, target.String(), err)
	}

	logger.Info("channel opened", logger.String("topic", topic))

	return &Channel{topic: topic, conn: conn}, nil
}

// Topic 返回通道的主题路径
func (c *Channel) Topic() string {
	return c.topic
}

// Send 编码并发送一条消息
func (c *Channel) Send(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: write on %s: %v", ErrTransport, c.topic, err)
	}
	return nil
}

// ReceiveOne 阻塞等待一帧并解码。非文本帧和解码失败都作为错误返回，
// 由调用方决定记录后继续还是终止循环。
func (c *Channel) ReceiveOne() (*Message, error) {
	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: read on %s: %v", ErrTransport, c.topic, err)
	}

	if msgType != websocket.TextMessage {
		return nil, fmt.Errorf("%w: non-text frame on %s", ErrDecoding, c.topic)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	if msg.Event == "" {
		return nil, fmt.Errorf("%w: missing event field", ErrDecoding)
	}

	return &msg, nil
}

// Subscribe 启动接收循环，每收到一条解码成功的消息就调用handler。
// 任何收帧或解码错误都会结束循环且不重试，重新订阅由上层负责。
// 同一通道最多只有一个活跃循环，重复调用是空操作。
func (c *Channel) Subscribe(handler func(*Message)) {
	c.mu.Lock()
	if c.subscribed {
		c.mu.Unlock()
		return
	}
	c.subscribed = true
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.subscribed = false
			c.mu.Unlock()
		}()

		for {
			msg, err := c.ReceiveOne()
			if err != nil {
				logger.Warn("channel receive loop terminated",
					logger.String("topic", c.topic),
					logger.ErrorField(err))
				return
			}
			handler(msg)
		}
	}()
}

// IsSubscribed 返回接收循环是否存活
func (c *Channel) IsSubscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribed
}

// Close 关闭底层连接，接收循环会随之自然终止
func (c *Channel) Close() error {
	return c.conn.Close()
}
