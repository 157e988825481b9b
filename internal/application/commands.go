package application

import (
	"context"
	"fmt"

	"voicenav/internal/domain"
	"voicenav/internal/voice"
)

type command struct {
	pattern string
	handler voice.Handler
	scope   voice.Scope
}

// RegisterCommands registers the site's voice commands against s. Page
// specific commands are only active on their page.
func RegisterCommands(reg *voice.Registry, s *Session) error {
	commands := []command{
		{
			pattern: "hello",
			handler: func(ctx context.Context, _ voice.Binding) error {
				return s.Alert(ctx, AlertHello)
			},
		},
		{
			pattern: "change the color to *color",
			handler: func(_ context.Context, b voice.Binding) error {
				s.SetBackground(b.Get("color"))
				return nil
			},
		},
		{
			pattern: "navigate to *page",
			handler: func(ctx context.Context, b voice.Binding) error {
				page, ok := domain.DestinationFor(b.Get("page"))
				if !ok {
					return nil
				}
				return s.Navigate(ctx, page)
			},
		},
		{
			pattern: "look up stock *ticker",
			handler: func(ctx context.Context, b voice.Binding) error {
				return s.LookupStock(ctx, b.Get("ticker"))
			},
			scope: voice.OnPage(domain.PageStocks.Document()),
		},
		{
			pattern: "load dog breed *breed",
			handler: func(ctx context.Context, b voice.Binding) error {
				return s.SelectBreed(ctx, b.Get("breed"))
			},
			scope: voice.OnPage(domain.PageDogs.Document()),
		},
	}

	for _, c := range commands {
		if err := reg.Register(c.pattern, c.handler, c.scope); err != nil {
			return fmt.Errorf("registering site commands: %w", err)
		}
	}
	return nil
}
