package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitpilot/internal/apiclient"
	"gitpilot/internal/events"
	"gitpilot/internal/models"
)

// ChatService turns one free-text goal into one approved, executed
// change set, with an explicit human checkpoint between planning and
// execution. It owns the append-only transcript and holds at most one
// pending plan; execute always echoes the plan exactly as received.
type ChatService struct {
	ctx   context.Context
	api   *apiclient.Client
	repos *RepoService

	mu         sync.Mutex
	transcript []models.ChatMessage
	pending    *models.Plan
}

func NewChatService(api *apiclient.Client, repos *RepoService) *ChatService {
	return &ChatService{api: api, repos: repos}
}

func (s *ChatService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// Transcript returns the conversation so far.
func (s *ChatService) Transcript() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.transcript...)
}

// PendingPlan returns the plan awaiting approval, or nil.
func (s *ChatService) PendingPlan() *models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// HasPendingPlan gates the approval control in the view.
func (s *ChatService) HasPendingPlan() bool {
	return s.PendingPlan() != nil
}

func newMessage(role models.ChatRole, content string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

func (s *ChatService) appendMessage(msg models.ChatMessage) {
	s.mu.Lock()
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()
	if s.ctx != nil {
		events.Emit(s.ctx, events.ChatUpdated, events.NewInfo(string(msg.Role)))
	}
}

// RequestPlan sends the goal to the planner. The user turn is appended
// immediately; any previously held, not-yet-executed plan is dropped so
// at most one pending plan exists. Exactly one assistant turn follows -
// carrying the plan on success or the server's verbatim message on
// failure.
func (s *ChatService) RequestPlan(ctx context.Context, goal string) (*models.Plan, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, errors.New("goal is required")
	}
	repo := s.repos.Selected()
	if repo == nil {
		return nil, errors.New("no repository selected")
	}

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	s.appendMessage(newMessage(models.RoleUser, goal))

	plan, err := s.api.GeneratePlan(ctx, repo.Owner, repo.Name, goal)
	if err != nil {
		assistant := newMessage(models.RoleAssistant, err.Error())
		assistant.IsError = true
		s.appendMessage(assistant)
		return nil, err
	}

	assistant := newMessage(models.RoleAssistant, plan.Summary)
	assistant.Plan = plan
	s.mu.Lock()
	s.pending = plan
	s.mu.Unlock()
	s.appendMessage(assistant)
	return plan, nil
}

// Execute submits the held plan for execution. Rejected when no plan is
// pending; the plan object sent is the one the planner returned, not a
// reconstruction, so the server can validate it unchanged. The pending
// plan is not implicitly cleared on completion - the view decides via
// ClearPlan whether the next execute needs a fresh plan.
func (s *ChatService) Execute(ctx context.Context) (*models.ExecutionLog, error) {
	s.mu.Lock()
	plan := s.pending
	s.mu.Unlock()
	if plan == nil {
		return nil, errors.New("no plan to execute")
	}
	repo := s.repos.Selected()
	if repo == nil {
		return nil, errors.New("no repository selected")
	}

	log, err := s.api.ExecutePlan(ctx, repo.Owner, repo.Name, plan)
	if err != nil {
		assistant := newMessage(models.RoleAssistant, err.Error())
		assistant.IsError = true
		s.appendMessage(assistant)
		return nil, err
	}

	assistant := newMessage(models.RoleAssistant, log.Message)
	assistant.Execution = log
	s.appendMessage(assistant)
	return log, nil
}

// ClearPlan drops the pending plan without touching the transcript.
func (s *ChatService) ClearPlan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Reset discards the transcript and any pending plan. Runs on logout.
func (s *ChatService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	s.pending = nil
}
