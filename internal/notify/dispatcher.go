// Package notify maps committed lifecycle events to rendered email
// messages and hands them to an external transport. Delivery failures never
// block or roll back the transition they report.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/ohse-platform/incident-backend/internal/lifecycle"
	"github.com/ohse-platform/incident-backend/internal/models"
	"github.com/ohse-platform/incident-backend/internal/risk"
	"github.com/ohse-platform/incident-backend/internal/roles"
)

// ErrNoRecipient means no address could be resolved for any target role.
var ErrNoRecipient = errors.New("no recipient resolvable for notification")

// Message is a fully rendered notification ready for transport.
type Message struct {
	Subject string
	Body    string
	To      string
}

// Mailer delivers a rendered message. Implementations are fire-and-forget
// from the dispatcher's perspective.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Directory resolves the notification address for a role in the context of
// one case: the case's own approver/reporter where assigned, the
// investigation's investigator, or any user holding the role otherwise.
type Directory interface {
	EmailForRole(ctx context.Context, c *models.Case, role roles.Role) (string, error)
}

type Dispatcher struct {
	mailer    Mailer
	directory Directory
	baseURL   string
}

func NewDispatcher(mailer Mailer, directory Directory, baseURL string) *Dispatcher {
	return &Dispatcher{mailer: mailer, directory: directory, baseURL: baseURL}
}

// Dispatch renders and sends the notification for event on c. It returns
// ErrNoRecipient when no target address resolves; callers log that and
// carry on, the triggering transition stands.
func (d *Dispatcher) Dispatch(ctx context.Context, event lifecycle.Event, c *models.Case) error {
	scenarioKey, targets := routing(event, risk.Tier(c.RiskTier))
	if scenarioKey == "" {
		return nil
	}
	tmpl := scenarios[scenarioKey]

	msgs := make([]Message, 0, len(targets))
	for _, role := range targets {
		addr, err := d.directory.EmailForRole(ctx, c, role)
		if err != nil || addr == "" {
			slog.Warn("notification recipient unresolved",
				"tracking_no", c.TrackingNo, "event", string(event), "role", role.String())
			continue
		}
		msgs = append(msgs, Message{
			Subject: render(tmpl.subject, c.TrackingNo, c.VictimName()),
			Body:    d.renderBody(tmpl.body, c, role),
			To:      addr,
		})
	}
	if len(msgs) == 0 {
		return ErrNoRecipient
	}

	var failed error
	for _, msg := range msgs {
		if err := d.mailer.Send(ctx, msg); err != nil {
			sentry.CaptureException(fmt.Errorf("notification delivery failed for %s: %w", c.TrackingNo, err))
			slog.Error("notification delivery failed",
				"tracking_no", c.TrackingNo, "event", string(event), "to", msg.To, "error", err)
			failed = err
		}
	}
	return failed
}

func (d *Dispatcher) renderBody(template string, c *models.Case, role roles.Role) string {
	body := render(template, c.TrackingNo, c.VictimName())
	body += "\n\nCase: " + d.baseURL + "/report/" + c.TrackingNo
	if role == roles.Approver {
		body += "\nApprove: " + d.baseURL + "/approve/" + c.TrackingNo
	}
	return body
}
