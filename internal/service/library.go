package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/interviewlab/coach/internal/domain"
	"github.com/interviewlab/coach/internal/prompts"
	"github.com/interviewlab/coach/internal/store"
)

// curatedDocs ship with the service. They cannot be deleted.
var curatedDocs = []domain.LibraryDoc{
	{
		Title:   "Redis Persistence",
		Curated: true,
		Content: `# Redis Persistence

## Core Concept
Redis keeps the working set in memory and offers two persistence mechanisms: RDB snapshots and the AOF log.

## Mechanics
- RDB forks the process and writes a point-in-time snapshot. Cheap to load, loses writes since the last snapshot.
- AOF appends every write command. Replay on restart rebuilds state; fsync policy trades durability against latency.
- Hybrid mode (aof-use-rdb-preamble) snapshots into the AOF and appends from there.

## Pros and Cons
- RDB: compact, fast restarts, bounded data loss window.
- AOF: near-zero loss with fsync always, but larger files and slower replay.

## Interview Q&A
Q: A cache instance restarts and serves stale data. Which persistence mode was likely on?
A: RDB only; writes after the last snapshot are gone, so the replica of record must be the source of truth.`,
	},
	{
		Title:   "HTTPS Handshake",
		Curated: true,
		Content: `# HTTPS Handshake

## Core Concept
TLS layers authenticated key exchange on top of TCP so that HTTP traffic is private and tamper-evident.

## Mechanics
1. ClientHello carries supported versions, cipher suites and a key share.
2. ServerHello picks the suite and returns the certificate chain plus its own key share.
3. Both sides derive the session keys; in TLS 1.3 application data can start after one round trip.

## Pros and Cons
- Certificates bind identity to keys, but the chain of trust makes CA compromise systemic.
- Session resumption (tickets, 0-RTT) cuts latency at the cost of replay considerations.

## Interview Q&A
Q: Why does the client verify the certificate chain rather than just the leaf?
A: The leaf alone proves nothing; trust flows from a root the client already holds, through each signed intermediate.`,
	},
	{
		Title:   "System Design: Flash Sale",
		Curated: true,
		Content: `# System Design: Flash Sale

## Core Concept
A flash sale funnels an enormous burst of intent toward a tiny inventory. The design is mostly about shedding load before it touches the database.

## Mechanics
- Static page and CDN absorb the browse traffic.
- A gateway rate-limits and drops obviously losing requests early.
- Inventory lives in Redis; a Lua script decrements atomically so overselling is impossible.
- Winners drop into a queue; order creation is asynchronous and idempotent.

## Pros and Cons
- Queueing decouples the spike from order processing, but users need a status endpoint instead of an instant confirmation.

## Interview Q&A
Q: Where does the system say "no" to most users?
A: As early as possible: CDN, then gateway limits, then the atomic stock check. The database only ever sees winners.`,
	},
}

// roadmapTemplates are hand-written tracks for common targets, available
// without a generator call.
var roadmapTemplates = []domain.RoadmapTemplate{
	{
		Name: "Backend Engineer (general)",
		Phases: []domain.RoadmapPhase{
			{
				PhaseName: "Foundations",
				Duration:  "2 weeks",
				Goals:     []string{"Rebuild CS fundamentals", "One topic summary per day"},
				KeyTopics: []string{"operating systems", "computer networks", "MySQL internals", "Redis"},
			},
			{
				PhaseName: "Coding drills",
				Duration:  "3 weeks",
				Goals:     []string{"Two algorithm problems daily", "Cover the high-frequency patterns"},
				KeyTopics: []string{"arrays and hashing", "linked lists", "binary trees", "dynamic programming"},
			},
			{
				PhaseName: "Projects and mocks",
				Duration:  "1 week",
				Goals:     []string{"Polish one project story with metrics", "Daily mock interview"},
				KeyTopics: []string{"system design", "project deep dives", "behavioral questions"},
			},
		},
	},
	{
		Name: "AI Algorithm Engineer (new grad)",
		Phases: []domain.RoadmapPhase{
			{
				PhaseName: "Math and ML basics",
				Duration:  "2 weeks",
				Goals:     []string{"Re-derive the classic models by hand"},
				KeyTopics: []string{"linear algebra", "probability", "logistic regression", "gradient descent"},
			},
			{
				PhaseName: "Deep learning",
				Duration:  "2 weeks",
				Goals:     []string{"Implement a small transformer from scratch"},
				KeyTopics: []string{"backpropagation", "CNN and RNN", "attention", "transformers"},
			},
			{
				PhaseName: "Papers and practice",
				Duration:  "2 weeks",
				Goals:     []string{"Present two recent papers", "Mock interviews on model trade-offs"},
				KeyTopics: []string{"model deployment", "fine-tuning", "evaluation metrics"},
			},
		},
	},
	{
		Name: "CS Fundamentals",
		Phases: []domain.RoadmapPhase{
			{
				PhaseName: "Operating systems",
				Duration:  "1 week",
				Goals:     []string{"Explain processes, threads and scheduling without notes"},
				KeyTopics: []string{"processes and threads", "memory management", "locks and deadlock"},
			},
			{
				PhaseName: "Networks",
				Duration:  "1 week",
				Goals:     []string{"Trace a request from URL to response end to end"},
				KeyTopics: []string{"TCP and UDP", "HTTP and HTTPS", "DNS"},
			},
			{
				PhaseName: "Databases",
				Duration:  "1 week",
				Goals:     []string{"Walk an index lookup and a transaction lifecycle"},
				KeyTopics: []string{"B+ trees", "transactions and isolation", "query optimization"},
			},
		},
	},
}

// LibraryDocs lists every doc visible to a user: curated first, then their
// own researched notes.
func (s *Service) LibraryDocs(userID string) []domain.LibraryDoc {
	docs := append([]domain.LibraryDoc{}, curatedDocs...)
	s.libMu.Lock()
	docs = append(docs, s.researched[userID]...)
	s.libMu.Unlock()
	return docs
}

// LibraryDoc returns one doc by exact title.
func (s *Service) LibraryDoc(userID, title string) (*domain.LibraryDoc, error) {
	for _, d := range curatedDocs {
		if d.Title == title {
			doc := d
			return &doc, nil
		}
	}
	s.libMu.Lock()
	defer s.libMu.Unlock()
	for _, d := range s.researched[userID] {
		if d.Title == title {
			doc := d
			return &doc, nil
		}
	}
	return nil, fmt.Errorf("%w: no library doc titled %q", store.ErrNotFound, title)
}

// Research generates a technical note on a topic and files it under the
// user's library. The note replaces any earlier note with the same title.
func (s *Service) Research(ctx context.Context, userID, topic string) (*domain.LibraryDoc, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	content, err := s.generate(ctx, prompts.Research(topic))
	if err != nil {
		return nil, fmt.Errorf("research unavailable: %w", err)
	}

	doc := domain.LibraryDoc{Title: topic, Content: content}
	s.libMu.Lock()
	defer s.libMu.Unlock()
	kept := s.researched[userID][:0]
	for _, d := range s.researched[userID] {
		if d.Title != doc.Title {
			kept = append(kept, d)
		}
	}
	s.researched[userID] = append(kept, doc)
	return &doc, nil
}

// DeleteLibraryDoc removes one of the user's researched notes. Curated docs
// cannot be deleted.
func (s *Service) DeleteLibraryDoc(userID, title string) error {
	for _, d := range curatedDocs {
		if d.Title == title {
			return fmt.Errorf("%w: %q is a curated doc", ErrCuratedDoc, title)
		}
	}
	s.libMu.Lock()
	defer s.libMu.Unlock()
	docs := s.researched[userID]
	for i, d := range docs {
		if d.Title == title {
			s.researched[userID] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: no library doc titled %q", store.ErrNotFound, title)
}

// RoadmapTemplates lists the curated roadmap tracks.
func (s *Service) RoadmapTemplates() []domain.RoadmapTemplate {
	return append([]domain.RoadmapTemplate{}, roadmapTemplates...)
}

// RoadmapTemplate returns one curated track by name.
func (s *Service) RoadmapTemplate(name string) (*domain.RoadmapTemplate, error) {
	for _, t := range roadmapTemplates {
		if t.Name == name {
			tpl := t
			return &tpl, nil
		}
	}
	return nil, fmt.Errorf("%w: no roadmap template named %q", store.ErrNotFound, name)
}
