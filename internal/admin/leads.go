package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gutoautopecas/internal/models"
	"gutoautopecas/internal/store"
)

// ErrLeadNotFound is returned for a lead ID with no remote row.
var ErrLeadNotFound = errors.New("admin: lead not found")

// LeadsPoller refreshes a surface's leads every interval until stopped.
type LeadsPoller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startLeadsPoller(interval time.Duration, refresh func(ctx context.Context)) *LeadsPoller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &LeadsPoller{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh(ctx)
			}
		}
	}()
	return p
}

// Stop ends polling and waits for the loop to exit. A fetch in flight is
// cancelled and its result discarded.
func (p *LeadsPoller) Stop() {
	p.cancel()
	<-p.done
}

// ActivateLeads fetches the leads and starts polling them. Calling it
// while polling is already active returns the cached list.
func (s *Surface) ActivateLeads(ctx context.Context) ([]models.Lead, error) {
	s.mu.Lock()
	if s.poller != nil {
		leads := append([]models.Lead(nil), s.leadList...)
		s.mu.Unlock()
		return leads, nil
	}
	s.pollGen++
	gen := s.pollGen
	s.mu.Unlock()

	leads, err := s.fetchLeads(ctx, gen)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poller == nil && s.pollGen == gen {
		s.poller = startLeadsPoller(s.interval, func(ctx context.Context) {
			if _, err := s.fetchLeads(ctx, gen); err != nil {
				slog.Warn("leads poll failed", "error", err)
			}
		})
	}
	return leads, err
}

// DeactivateLeads stops polling. Results of fetches started before the
// call are ignored.
func (s *Surface) DeactivateLeads() {
	s.mu.Lock()
	p := s.poller
	s.poller = nil
	s.pollGen++
	s.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// LeadsActive reports whether the leads view is polling.
func (s *Surface) LeadsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poller != nil
}

// RefreshLeads fetches the leads now, regardless of polling.
func (s *Surface) RefreshLeads(ctx context.Context) ([]models.Lead, error) {
	s.mu.Lock()
	gen := s.pollGen
	s.mu.Unlock()
	return s.fetchLeads(ctx, gen)
}

// fetchLeads loads the leads and stores them unless polling was
// deactivated meanwhile.
func (s *Surface) fetchLeads(ctx context.Context, gen uint64) ([]models.Lead, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin: fetch leads: %w", err)
	}
	s.mu.Lock()
	if s.pollGen == gen {
		s.leadList = leads
	}
	s.mu.Unlock()
	return append([]models.Lead(nil), leads...), nil
}

// Leads returns the last fetched leads, newest first.
func (s *Surface) Leads() []models.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Lead(nil), s.leadList...)
}

// UnreadCount returns how many of the last fetched leads are unread.
func (s *Surface) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.CountUnread(s.leadList)
}

// MarkLeadRead flags a lead as read remotely, then locally.
func (s *Surface) MarkLeadRead(ctx context.Context, id string) error {
	if err := s.leads.MarkRead(ctx, id); err != nil {
		return leadError("mark lead read", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	leads := append([]models.Lead(nil), s.leadList...)
	for i := range leads {
		if leads[i].ID == id {
			leads[i].Read = true
		}
	}
	s.leadList = leads
	return nil
}

// DeleteLead removes a lead remotely, then locally.
func (s *Surface) DeleteLead(ctx context.Context, id string) error {
	if err := s.leads.Delete(ctx, id); err != nil {
		return leadError("delete lead", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]models.Lead, 0, len(s.leadList))
	for _, l := range s.leadList {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	s.leadList = kept
	return nil
}

func leadError(op, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrLeadNotFound, id)
	}
	return fmt.Errorf("admin: %s: %w", op, err)
}
