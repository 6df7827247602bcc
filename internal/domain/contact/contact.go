package contact

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a message does not exist.
	ErrNotFound = errors.New("contact message not found")
	// ErrMissingFields is returned when an incoming message lacks sender or body.
	ErrMissingFields = errors.New("name, email and message required")
)

// Message is a note left through the storefront contact form.
type Message struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	Read      bool
	CreatedAt time.Time
}

// Repository defines persistence operations for contact messages.
type Repository interface {
	List(ctx context.Context, unreadOnly bool, offset, limit int) ([]Message, error)
	GetByID(ctx context.Context, id string) (*Message, error)
	Create(ctx context.Context, m *Message) error
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int, error)
}

// Service handles contact-message intake and back office triage.
type Service struct {
	repo Repository
}

// NewService creates a contact Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit records an incoming message.
func (s *Service) Submit(ctx context.Context, name, email, subject, body string) (*Message, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	body = strings.TrimSpace(body)
	if name == "" || email == "" || body == "" {
		return nil, ErrMissingFields
	}

	m := &Message{
		ID:      uuid.New().String(),
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(subject),
		Body:    body,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, errors.Wrap(err, "create message")
	}
	return m, nil
}

// Open returns a message and marks it read.
func (s *Service) Open(ctx context.Context, id string) (*Message, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Read {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			return nil, errors.Wrap(err, "mark read")
		}
		m.Read = true
	}
	return m, nil
}

// List returns messages for the back office, optionally unread only.
func (s *Service) List(ctx context.Context, unreadOnly bool, offset, limit int) ([]Message, error) {
	return s.repo.List(ctx, unreadOnly, offset, limit)
}

// UnreadCount returns the badge count for the back office.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.CountUnread(ctx)
}

// Delete removes a message permanently. Contact messages carry no financial
// history, so hard delete is fine.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
