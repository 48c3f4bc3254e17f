package testutil

import (
	"context"
	"sync"

	"github.com/mkrylov/accountd/internal/service"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

// RecordingSender captures outgoing mail instead of talking to SMTP.
type RecordingSender struct {
	mu    sync.Mutex
	mails []Mail
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

func (s *RecordingSender) Send(to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mails = append(s.mails, Mail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (s *RecordingSender) Mails() []Mail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Mail(nil), s.mails...)
}

func (s *RecordingSender) Last() (Mail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.mails) == 0 {
		return Mail{}, false
	}
	return s.mails[len(s.mails)-1], true
}

// RecordingSink captures dispatched lifecycle events.
type RecordingSink struct {
	mu     sync.Mutex
	events []service.Event
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Dispatch(ctx context.Context, evt service.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *RecordingSink) Events() []service.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]service.Event(nil), s.events...)
}
