// Package store provides typed access to the entity tables the content
// tree does not cover: leads, hero slides and single product rows. Each
// store wraps a gateway.Gateway and maps rows to models.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/models"
)

// ErrNotFound is returned when no row matched the given ID.
var ErrNotFound = errors.New("store: not found")

// LeadStore handles contact form submissions.
type LeadStore struct {
	gw gateway.Gateway
}

// NewLeadStore creates a new LeadStore over gw.
func NewLeadStore(gw gateway.Gateway) *LeadStore {
	return &LeadStore{gw: gw}
}

// Create inserts a new unread lead. ID and CreatedAt are assigned here so
// a retried insert never duplicates the row.
func (s *LeadStore) Create(ctx context.Context, l *models.Lead) error {
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	l.Read = false
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.TrimSpace(l.Email)

	err := s.gw.Insert(ctx, gateway.TableLeads, gateway.Row{
		"id":         l.ID,
		"name":       l.Name,
		"phone":      l.Phone,
		"email":      l.Email,
		"message":    l.Message,
		"created_at": l.CreatedAt,
		"read":       false,
	})
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// List returns every lead, newest first.
func (s *LeadStore) List(ctx context.Context) ([]models.Lead, error) {
	rows, err := s.gw.Select(ctx, gateway.TableLeads, gateway.Query{
		Order: []gateway.Order{{Column: "created_at", Desc: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	leads := make([]models.Lead, 0, len(rows))
	for _, r := range rows {
		leads = append(leads, models.Lead{
			ID:        r.String("id"),
			Name:      r.String("name"),
			Phone:     r.String("phone"),
			Email:     r.String("email"),
			Message:   r.String("message"),
			CreatedAt: r.Time("created_at"),
			Read:      r.Bool("read"),
		})
	}
	return leads, nil
}

// MarkRead flags a lead as read.
func (s *LeadStore) MarkRead(ctx context.Context, id string) error {
	err := s.gw.Update(ctx, gateway.TableLeads, gateway.Row{"read": true}, gateway.Filter{"id": id})
	if errors.Is(err, gateway.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mark lead read: %w", err)
	}
	return nil
}

// Delete removes a lead.
func (s *LeadStore) Delete(ctx context.Context, id string) error {
	err := s.gw.Delete(ctx, gateway.TableLeads, gateway.Filter{"id": id})
	if errors.Is(err, gateway.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

// CountUnread returns how many leads in leads are unread.
func CountUnread(leads []models.Lead) int {
	n := 0
	for _, l := range leads {
		if !l.Read {
			n++
		}
	}
	return n
}
