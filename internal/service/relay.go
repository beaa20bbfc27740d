// Package service contains the relay application services.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/TaskRelay/internal/adapter/otel"
	"github.com/Strob0t/TaskRelay/internal/domain/message"
	"github.com/Strob0t/TaskRelay/internal/domain/relay"
	"github.com/Strob0t/TaskRelay/internal/domain/room"
	"github.com/Strob0t/TaskRelay/internal/domain/task"
	"github.com/Strob0t/TaskRelay/internal/domain/webhook"
	"github.com/Strob0t/TaskRelay/internal/logger"
	"github.com/Strob0t/TaskRelay/internal/port/broadcast"
	"github.com/Strob0t/TaskRelay/internal/port/messagequeue"
	"github.com/Strob0t/TaskRelay/internal/port/notifier"
	"github.com/Strob0t/TaskRelay/internal/port/taskprovider"
)

// publishTimeout bounds the fire-and-forget outcome publish.
const publishTimeout = 2 * time.Second

var outcomeEvents = map[relay.Kind]string{
	relay.KindSent:    broadcast.EventRelaySent,
	relay.KindIgnored: broadcast.EventRelayIgnored,
	relay.KindFailed:  broadcast.EventRelayFailed,
}

// RelayDeps are the collaborators of a RelayService. Contacts, Hub, Queue
// and Metrics are optional.
type RelayDeps struct {
	Tasks    taskprovider.Provider
	Contacts *ContactResolver
	Notifier notifier.Notifier
	Rooms    room.Table
	Format   message.Options
	Hub      broadcast.Broadcaster
	Queue    messagequeue.Publisher
	Subject  string
	Metrics  *otel.Metrics
}

// RelayService turns one webhook event into at most one room message.
type RelayService struct {
	deps RelayDeps
}

// NewRelayService creates a RelayService.
func NewRelayService(deps RelayDeps) *RelayService {
	if deps.Subject == "" {
		deps.Subject = messagequeue.DefaultSubjectPrefix
	}
	return &RelayService{deps: deps}
}

// Rooms returns the folder-to-room table.
func (s *RelayService) Rooms() room.Table { return s.deps.Rooms }

// Preview is a rendered notification that has not been delivered.
type Preview struct {
	Task     *task.Task
	Entry    room.Entry
	FolderID string
	Matched  bool
	Markdown string
}

// Render resolves and formats ev without delivering. An unmatched task
// yields Matched=false and no markdown.
func (s *RelayService) Render(ctx context.Context, ev webhook.Event) (*Preview, error) {
	t, err := s.deps.Tasks.Task(ctx, ev.TaskID)
	if err != nil {
		return nil, fmt.Errorf("lookup task: %w", err)
	}

	p := &Preview{Task: t}
	p.Entry, p.FolderID, p.Matched = s.deps.Rooms.Resolve(t.ParentIDs)
	if !p.Matched {
		return p, nil
	}

	assignees, err := s.assignees(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("resolve assignees: %w", err)
	}

	p.Markdown = message.Format(message.Input{
		Task:      t,
		EventType: ev.EventType,
		Entry:     p.Entry,
		Assignees: assignees,
	}, s.deps.Format)
	return p, nil
}

// Relay processes ev end to end. The returned outcome is always populated;
// err is non-nil only for failed outcomes.
func (s *RelayService) Relay(ctx context.Context, ev webhook.Event) (relay.Outcome, error) {
	start := time.Now()
	ctx, span := otel.StartRelaySpan(ctx, ev.TaskID, ev.EventType)
	if s.deps.Metrics != nil {
		s.deps.Metrics.EventsReceived.Add(ctx, 1)
	}

	out, err := s.relay(ctx, ev)
	out.RequestID = logger.RequestID(ctx)

	otel.EndSpan(span, err)
	s.deps.Metrics.RecordOutcome(ctx, string(out.Kind), time.Since(start))
	s.emit(ctx, out)
	return out, err
}

func (s *RelayService) relay(ctx context.Context, ev webhook.Event) (relay.Outcome, error) {
	p, err := s.Render(ctx, ev)
	if err != nil {
		return s.failed(ctx, ev, "", err), err
	}

	if !p.Matched {
		out := relay.NewOutcome(relay.KindIgnored, ev.TaskID, ev.EventType)
		slog.InfoContext(ctx, "relay ignored",
			"task_id", ev.TaskID,
			"event_type", ev.EventType,
			"parent_ids", p.Task.ParentIDs,
		)
		return out, nil
	}

	err = s.deps.Notifier.Send(ctx, notifier.Notification{
		RoomID:   p.Entry.RoomID,
		Markdown: p.Markdown,
	})
	if err != nil {
		err = fmt.Errorf("deliver: %w", err)
		out := s.failed(ctx, ev, p.FolderID, err)
		out.RoomID = p.Entry.RoomID
		return out, err
	}

	out := relay.NewOutcome(relay.KindSent, ev.TaskID, ev.EventType)
	out.FolderID = p.FolderID
	out.RoomID = p.Entry.RoomID
	slog.InfoContext(ctx, "relay sent",
		"task_id", ev.TaskID,
		"event_type", ev.EventType,
		"folder_id", p.FolderID,
		"room_id", p.Entry.RoomID,
	)
	return out, nil
}

func (s *RelayService) failed(ctx context.Context, ev webhook.Event, folderID string, err error) relay.Outcome {
	out := relay.NewOutcome(relay.KindFailed, ev.TaskID, ev.EventType)
	out.FolderID = folderID
	out.Error = err.Error()
	slog.ErrorContext(ctx, "relay failed",
		"task_id", ev.TaskID,
		"event_type", ev.EventType,
		"error", err,
	)
	return out
}

// assignees returns the names to render. Without a resolver the raw ids
// are used; no ids means no lookup.
func (s *RelayService) assignees(ctx context.Context, t *task.Task) ([]string, error) {
	if len(t.ResponsibleIDs) == 0 {
		return nil, nil
	}
	if s.deps.Contacts == nil {
		return t.ResponsibleIDs, nil
	}
	return s.deps.Contacts.Names(ctx, t.ResponsibleIDs)
}

// emit pushes the outcome to live clients and the message queue. Neither
// can change the relay result.
func (s *RelayService) emit(ctx context.Context, out relay.Outcome) {
	if s.deps.Hub != nil {
		s.deps.Hub.BroadcastEvent(ctx, outcomeEvents[out.Kind], out)
	}
	if s.deps.Queue == nil {
		return
	}

	data, err := json.Marshal(out)
	if err != nil {
		slog.ErrorContext(ctx, "marshal relay outcome", "error", err)
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	subject := messagequeue.OutcomeSubject(s.deps.Subject, string(out.Kind))
	if err := s.deps.Queue.Publish(pctx, subject, data); err != nil {
		slog.WarnContext(ctx, "relay outcome publish failed", "subject", subject, "error", err)
	}
}
