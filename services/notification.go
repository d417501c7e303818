package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"citizen-portal-api/models"
	"citizen-portal-api/monitor"
	"citizen-portal-api/utils"
)

// SendFunc delivers one email. config.SendMail satisfies it; tests
// substitute a recorder.
type SendFunc func(to []string, subject, html string) error

// Notifier sends citizen-facing emails and a coalesced staff digest of
// new submissions. Email failures are logged and counted, never
// propagated: notification is best effort and must not fail the
// request that triggered it.
type Notifier struct {
	send       SendFunc
	staffInbox string

	mu      sync.Mutex
	pending []string
	digest  *Coalescer
}

// NewNotifier wires a notifier with the given digest coalescing window.
// An empty staffInbox disables the digest.
func NewNotifier(send SendFunc, staffInbox string, digestWindow time.Duration) *Notifier {
	n := &Notifier{send: send, staffInbox: staffInbox}
	if digestWindow <= 0 {
		digestWindow = 5 * time.Minute
	}
	n.digest = NewCoalescer(digestWindow, n.sendDigest)
	return n
}

// SubmissionReceived emails a confirmation to the applicant and queues
// the reference for the staff digest.
func (n *Notifier) SubmissionReceived(app *models.Application) {
	subject := fmt.Sprintf("Antrag eingegangen – %s", app.ReferenceNumber)
	body := fmt.Sprintf(
		`<p>Guten Tag %s %s,</p>
<p>Ihr Antrag (<strong>%s</strong>) ist am %s bei uns eingegangen.</p>
<p>Ihre Referenznummer lautet: <strong>%s</strong></p>
<p>Mit dieser Nummer können Sie den Bearbeitungsstand jederzeit online abrufen.</p>`,
		app.FirstName, app.LastName,
		utils.TypeLabel(app.Type),
		utils.FormatDateTimePtr(app.SubmittedAt),
		app.ReferenceNumber,
	)
	n.deliver("submission_confirmation", []string{app.Email}, subject, body)

	if n.staffInbox != "" {
		n.mu.Lock()
		n.pending = append(n.pending, app.ReferenceNumber)
		n.mu.Unlock()
		n.digest.Trigger()
	}
}

// StatusChanged emails the applicant about a staff status transition.
func (n *Notifier) StatusChanged(app *models.Application, old models.Status) {
	subject := fmt.Sprintf("Statusänderung – %s", app.ReferenceNumber)
	body := fmt.Sprintf(
		`<p>Guten Tag %s %s,</p>
<p>der Status Ihres Antrags <strong>%s</strong> hat sich geändert:</p>
<p>%s &rarr; <strong>%s</strong></p>`,
		app.FirstName, app.LastName,
		app.ReferenceNumber,
		utils.StatusLabel(old), utils.StatusLabel(app.Status),
	)
	if app.StaffNotes != "" {
		body += fmt.Sprintf("<p>Hinweis der Sachbearbeitung: %s</p>", app.StaffNotes)
	}
	n.deliver("status_change", []string{app.Email}, subject, body)
}

// Stop flushes a pending digest and tears down the scheduler.
func (n *Notifier) Stop() {
	n.digest.Flush()
	n.digest.Stop()
}

func (n *Notifier) sendDigest() {
	n.mu.Lock()
	refs := n.pending
	n.pending = nil
	n.mu.Unlock()

	if len(refs) == 0 {
		return
	}

	body := "<p>Neue Anträge seit der letzten Benachrichtigung:</p><ul>"
	for _, ref := range refs {
		body += fmt.Sprintf("<li>%s</li>", ref)
	}
	body += "</ul>"

	subject := fmt.Sprintf("%d neue Anträge", len(refs))
	n.deliver("staff_digest", []string{n.staffInbox}, subject, body)
}

func (n *Notifier) deliver(kind string, to []string, subject, body string) {
	if err := n.send(to, subject, body); err != nil {
		monitor.EmailFailuresTotal.WithLabelValues(kind).Inc()
		log.Printf("Failed to send %s email: %v", kind, err)
		return
	}
	monitor.EmailsSentTotal.WithLabelValues(kind).Inc()
}
