package quotes

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"voicenav/internal/domain"
	"voicenav/internal/infra"
)

const defaultBaseURL = "https://zenquotes.io/api"

// Client fetches quotes from zenquotes.io.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return NewClientWithURL(defaultBaseURL)
}

func NewClientWithURL(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: infra.NewHTTPClient(),
	}
}

type quote struct {
	Q string `json:"q"`
	A string `json:"a"`
}

func (c *Client) Random(ctx context.Context) (*domain.Quote, error) {
	var quotes []quote
	if err := infra.GetJSON(ctx, c.httpClient, "zenquotes", c.baseURL+"/random", &quotes); err != nil {
		return nil, fmt.Errorf("fetching random quote: %w", err)
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("empty response from zenquotes")
	}

	return &domain.Quote{Text: quotes[0].Q, Author: quotes[0].A}, nil
}
