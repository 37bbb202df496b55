package config

import (
	"net/http"

	"github.com/gorilla/websocket"
)

func (c *Config) Dialer() *websocket.Dialer {
	return &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.HandshakeTimeout,
	}
}
