package rest

import (
	"net/http"
	"time"

	"ladderbot/internal/logger"
)

const DefaultBaseURL = "https://api.upbit.com"

// DefaultBatchSize bounds how many order ids go into one lookup request.
const DefaultBatchSize = 20

type Client struct {
	baseURL    string
	accessKey  string
	secretKey  string
	batchSize  int
	httpClient *http.Client
	log        *logger.Logger
}

func New(baseURL, accessKey, secretKey string, timeout time.Duration, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		accessKey: accessKey,
		secretKey: secretKey,
		batchSize: DefaultBatchSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

func (c *Client) SetBatchSize(n int) {
	if n > 0 {
		c.batchSize = n
	}
}
