// Package browser opens navigated pages in the desktop browser.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/pkg/browser"
)

type Navigator struct {
	baseURL string
	open    func(string) error
	logger  *slog.Logger
}

func NewNavigator(baseURL string, logger *slog.Logger) *Navigator {
	return NewNavigatorWithOpener(baseURL, browser.OpenURL, logger)
}

// NewNavigatorWithOpener uses open instead of launching a browser.
func NewNavigatorWithOpener(baseURL string, open func(string) error, logger *slog.Logger) *Navigator {
	return &Navigator{
		baseURL: baseURL,
		open:    open,
		logger:  logger,
	}
}

func (n *Navigator) Open(_ context.Context, document string) error {
	target, err := url.JoinPath(n.baseURL, document)
	if err != nil {
		return fmt.Errorf("building page url: %w", err)
	}

	n.logger.Info("opening page in browser", "url", target)
	if err := n.open(target); err != nil {
		return fmt.Errorf("opening %s: %w", target, err)
	}
	return nil
}
