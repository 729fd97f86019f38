package pusher

import (
	"context"
	"errors"
	"net/url"
	"strings"

	pusherapi "github.com/pusher/pusher-http-go/v5"

	"atlas/config"
)

// 频道与事件命名约定（前端监听同名事件）
const (
	UserChannelPrefix       = "private-user-"
	GlobalChannel           = "global"
	EventNewNotification    = "new-notification"
	EventGlobalNotification = "global-notification"
)

var (
	ErrDisabled       = errors.New("实时推送未启用")
	ErrChannelInvalid = errors.New("无效的频道授权请求")
)

// UserChannel 返回用户私有频道名
func UserChannel(userID string) string {
	return UserChannelPrefix + userID
}

// PublicConfig 可下发给浏览器的连接参数（不含 Secret）
type PublicConfig struct {
	Key     string `json:"key"`
	Cluster string `json:"cluster"`
	UseTLS  bool   `json:"useTLS"`
}

// AuthRequest Pusher SDK 私有频道鉴权请求体
type AuthRequest struct {
	SocketID    string
	ChannelName string
}

// ParseAuthRequest 解析 application/x-www-form-urlencoded 的鉴权请求体
func ParseAuthRequest(body []byte) (*AuthRequest, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, ErrChannelInvalid
	}
	req := &AuthRequest{
		SocketID:    strings.TrimSpace(values.Get("socket_id")),
		ChannelName: strings.TrimSpace(values.Get("channel_name")),
	}
	if req.SocketID == "" || req.ChannelName == "" {
		return nil, ErrChannelInvalid
	}
	return req, nil
}

// Client Pusher HTTP API 封装
// 未启用时 Trigger 为空操作，通知仍依赖前端轮询补齐
type Client struct {
	api     *pusherapi.Client
	public  PublicConfig
	enabled bool
}

// NewClient 根据配置创建 Pusher 客户端
func NewClient(cfg *config.PusherConfig) *Client {
	c := &Client{
		public: PublicConfig{
			Key:     cfg.Key,
			Cluster: cfg.Cluster,
			UseTLS:  cfg.UseTLS,
		},
		enabled: cfg.Enabled,
	}
	if cfg.Enabled {
		c.api = &pusherapi.Client{
			AppID:   cfg.AppID,
			Key:     cfg.Key,
			Secret:  cfg.Secret,
			Cluster: cfg.Cluster,
			Secure:  cfg.UseTLS,
		}
	}
	return c
}

// Enabled 是否启用实时推送
func (c *Client) Enabled() bool { return c.enabled }

// PublicConfig 返回前端连接参数
func (c *Client) PublicConfig() PublicConfig { return c.public }

// Trigger 向频道发布事件
// SDK 自身不接受 context，这里仅在调用前检查取消
func (c *Client) Trigger(ctx context.Context, channel, event string, data interface{}) error {
	if !c.enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.api.Trigger(channel, event, data)
}

// AuthorizeUserChannel 仅为用户本人的私有频道签发鉴权签名
func (c *Client) AuthorizeUserChannel(userID string, body []byte) ([]byte, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}
	req, err := ParseAuthRequest(body)
	if err != nil {
		return nil, err
	}
	if req.ChannelName != UserChannel(userID) {
		return nil, ErrChannelInvalid
	}
	return c.api.AuthorizePrivateChannel(body)
}
