package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/extract"
)

type memRegistry struct {
	mu        sync.Mutex
	records   []domain.ProspectRecord
	failNames map[string]bool
	listErr   error
	listCalls int
	seq       int
}

func (r *memRegistry) ListAll(context.Context) ([]domain.ProspectRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]domain.ProspectRecord(nil), r.records...), nil
}

func (r *memRegistry) Append(_ context.Context, c domain.ProspectCandidate, by domain.AddedBy) (domain.ProspectRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNames[c.Name] {
		return domain.ProspectRecord{}, errors.New("write refused")
	}
	r.seq++
	rec := domain.ProspectRecord{
		ID:                fmt.Sprintf("rec-%d", r.seq),
		ProspectCandidate: c,
		Status:            domain.StatusNew,
		AddedBy:           by,
		DateAdded:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *memRegistry) Get(_ context.Context, id string) (domain.ProspectRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return domain.ProspectRecord{}, domain.ErrNotFound
}

func (r *memRegistry) UpdateStatus(_ context.Context, id string, status domain.Status) (domain.ProspectRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if rec.ID != id {
			continue
		}
		if !domain.CanTransition(rec.Status, status) {
			return domain.ProspectRecord{}, domain.ErrInvalidTransition
		}
		r.records[i].Status = status
		return r.records[i], nil
	}
	return domain.ProspectRecord{}, domain.ErrNotFound
}

func (r *memRegistry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return extract.Names(r.records)
}

type staticSource struct {
	docs  []domain.SourceDocument
	err   error
	since time.Time
}

func (s *staticSource) FetchWindow(_ context.Context, since time.Time) ([]domain.SourceDocument, error) {
	s.since = since
	return s.docs, s.err
}

type staticProfile struct {
	text string
	err  error
}

func (p staticProfile) Profile(context.Context) (string, error) { return p.text, p.err }

type staticLookalikes struct {
	refs  []domain.EntityRef
	err   error
	calls int
}

func (l *staticLookalikes) Lookalikes(context.Context) ([]domain.EntityRef, error) {
	l.calls++
	return l.refs, l.err
}

type mapBodies struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  int
}

func (m *mapBodies) FetchBody(_ context.Context, doc domain.SourceDocument) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	body, ok := m.bodies[doc.ID]
	if !ok {
		return "", errors.New("no body")
	}
	return body, nil
}

type scriptedExtractor struct {
	raw      string
	err      error
	readyErr error
	calls    int
	context  string
	vars     extract.RubricVars
}

func (e *scriptedExtractor) Ready() error { return e.readyErr }

func (e *scriptedExtractor) Extract(_ context.Context, contextBlock string, vars extract.RubricVars) (string, error) {
	e.calls++
	e.context, e.vars = contextBlock, vars
	return e.raw, e.err
}

type countingLocker struct {
	err      error
	acquired []string
	released int
}

func (l *countingLocker) Acquire(_ context.Context, key string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, key)
	return func() { l.released++ }, nil
}

type capturingNotifier struct {
	digests []string
	err     error
}

func (n *capturingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}
