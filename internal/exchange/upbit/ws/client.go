package ws

import (
	"time"

	"github.com/sirupsen/logrus"

	"ladderbot/internal/logger"
)

const DefaultURL = "wss://api.upbit.com/websocket/v1"

// Client reads order book snapshots over a short-lived websocket session.
// Each call dials, requests a snapshot, and closes once every market answered.
type Client struct {
	url     string
	log     *logger.Logger
	timeout time.Duration
}

func New(url string, timeout time.Duration, log *logger.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:     url,
		log:     log,
		timeout: timeout,
	}
}

func (w *Client) logEntry() *logrus.Entry {
	return w.log.WithComponent("upbit_ws")
}
