package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/rickgao/inbox-dashboard/internal/model"
	"github.com/rickgao/inbox-dashboard/internal/router"
)

// printer renders the live view: connectivity changes and incoming events.
// Messages of the watched conversation are highlighted; others are printed
// dimmed so the whole inbox stays visible.
type printer struct {
	out   io.Writer
	watch string

	mu sync.Mutex

	live    *color.Color
	offline *color.Color
	watched *color.Color
	other   *color.Color
	meta    *color.Color
}

func newPrinter(out io.Writer, conversationID string) *printer {
	return &printer{
		out:     out,
		watch:   conversationID,
		live:    color.New(color.FgGreen, color.Bold),
		offline: color.New(color.FgYellow, color.Bold),
		watched: color.New(color.FgCyan, color.Bold),
		other:   color.New(color.Faint),
		meta:    color.New(color.FgHiBlack),
	}
}

// Run prints until ctx is done or the subscription is closed.
func (p *printer) Run(ctx context.Context, sub *router.Subscription) {
	events := sub.Events()
	status := sub.Status()

	for {
		select {
		case <-ctx.Done():
			return
		case connected, ok := <-status:
			if !ok {
				status = nil
				continue
			}
			p.Status(connected)
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.Event(ev)
		}
	}
}

// User prints the resolved identity.
func (p *printer) User(u model.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.meta.Fprintf(p.out, "signed in as %s (id %d)\n", u.Username, u.ID)
}

// History prints stored messages of the watched conversation, oldest first.
func (p *printer) History(msgs []model.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.meta.Fprintf(p.out, "-- last %d messages in %s --\n", len(msgs), p.watch)
	for _, m := range msgs {
		p.writeMessage(p.watched, m.ConversationID, m, m.CreatedTime())
	}
	p.meta.Fprintln(p.out, "-- live --")
}

// Status prints the connectivity indicator.
func (p *printer) Status(connected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if connected {
		p.live.Fprintln(p.out, "● live")
		return
	}
	p.offline.Fprintln(p.out, "○ connecting...")
}

// Event prints one routed event.
func (p *printer) Event(ev *router.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	nm, ok := router.NewMessage(ev)
	if !ok {
		p.meta.Fprintf(p.out, "[%s] %s event (%d bytes)\n", ev.ReceivedAt.Format(time.TimeOnly), ev.Type, len(ev.Data))
		return
	}

	c := p.other
	if p.watch == "" || nm.ConversationID == p.watch {
		c = p.watched
	}
	p.writeMessage(c, nm.ConversationID, nm.Message, ev.ReceivedAt)
}

func (p *printer) writeMessage(c *color.Color, conversationID string, m model.Message, at time.Time) {
	arrow := "<-"
	if m.Direction == model.DirectionOutgoing {
		arrow = "->"
	}

	text := m.Text()
	if text == "" && m.MessageType != "" && m.MessageType != "text" {
		text = fmt.Sprintf("[%s]", m.MessageType)
	}

	stamp := "--:--:--"
	if !at.IsZero() {
		stamp = at.Local().Format(time.TimeOnly)
	}
	c.Fprintf(p.out, "[%s] %s %s %s: %s\n", stamp, conversationID, arrow, m.SenderID, text)
}
