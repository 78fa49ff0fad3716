// Package service coordinates one interactive or one-shot session: it holds
// the session credential, turns tab state into prompts, calls the generation
// client, and feeds the outcome back into the view store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moasq/nanogen/internal/gemini"
	"github.com/moasq/nanogen/internal/materialize"
	"github.com/moasq/nanogen/internal/prompts"
	"github.com/moasq/nanogen/internal/secrets"
	"github.com/moasq/nanogen/internal/storage"
	"github.com/moasq/nanogen/internal/view"
)

// ErrBusy is returned when a tab already has a call in flight.
var ErrBusy = errors.New("a generation is already running for this view")

// Session is the configuration every call of this session uses.
type Session struct {
	Credential string
	Model      string
}

// Options wires a Service. Client, Credentials and Usage are required.
type Options struct {
	Client      *gemini.Client
	Credentials *secrets.CredentialStore
	Usage       *storage.UsageStore
	Store       *view.Store
	Logger      *zap.Logger

	// CredentialOverride, when set, is used instead of the stored key for
	// this session only.
	CredentialOverride string
}

// Service coordinates generation for CLI and MCP usage.
type Service struct {
	mu      sync.RWMutex
	session Session

	client *gemini.Client
	creds  *secrets.CredentialStore
	usage  *storage.UsageStore
	store  *view.Store
	logger *zap.Logger
	newID  func() string
}

// New creates a service. The credential is read once here; later changes
// only happen through SaveCredential and ClearCredential.
func New(opts Options) (*Service, error) {
	if opts.Client == nil || opts.Credentials == nil || opts.Usage == nil {
		return nil, errors.New("service: client, credentials and usage are required")
	}
	if opts.Store == nil {
		opts.Store = view.NewStore(view.NewDeck())
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	credential := strings.TrimSpace(opts.CredentialOverride)
	if credential == "" {
		stored, err := opts.Credentials.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to read API key: %w", err)
		}
		credential = strings.TrimSpace(stored)
	}

	return &Service{
		session: Session{Credential: credential, Model: opts.Client.Model()},
		client:  opts.Client,
		creds:   opts.Credentials,
		usage:   opts.Usage,
		store:   opts.Store,
		logger:  opts.Logger,
		newID:   uuid.NewString,
	}, nil
}

// Session returns a copy of the session configuration.
func (s *Service) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Configured reports whether a credential is available.
func (s *Service) Configured() bool {
	return strings.TrimSpace(s.Session().Credential) != ""
}

// Store returns the view store the service dispatches to.
func (s *Service) Store() *view.Store {
	return s.store
}

// Generate runs the prompt of tab with its current field values.
//
// Without a credential it raises the not-configured notice and returns
// gemini.ErrNotConfigured without contacting the API. A failed call replaces
// the panel with the fixed warning and returns an error wrapping
// gemini.ErrGenerationFailed. Output that cannot be materialized is not an
// error: the panel shows the raw text with a warning.
func (s *Service) Generate(ctx context.Context, tab view.Tab) (view.TabState, error) {
	sess := s.Session()
	if strings.TrimSpace(sess.Credential) == "" {
		deck := s.store.Dispatch(view.NotConfigured{Tab: tab})
		s.logger.Info("generation blocked: no API key", zap.String("tab", string(tab)))
		return deck.Tab(tab), gemini.ErrNotConfigured
	}

	p, err := prompts.Render(tab, s.store.Snapshot().Tab(tab).Fields)
	if err != nil {
		return view.TabState{}, err
	}

	id := s.newID()
	if deck := s.store.Dispatch(view.Submit{Tab: tab, RequestID: id}); deck.Tab(tab).RequestID != id {
		return deck.Tab(tab), ErrBusy
	}

	log := s.logger.With(
		zap.String("request_id", id),
		zap.String("tab", string(tab)),
		zap.String("model", sess.Model),
	)
	log.Debug("generation started")

	released := false
	defer func() {
		if !released {
			s.store.Dispatch(view.Fail{Tab: tab, RequestID: id, Err: errors.New("generation aborted")})
		}
	}()

	resp, err := s.client.WithModel(sess.Model).Generate(ctx, sess.Credential, p)
	if err != nil {
		log.Error("generation failed", zap.Error(err))
		s.usage.RecordFailure()
		deck := s.store.Dispatch(view.Fail{Tab: tab, RequestID: id, Err: err})
		released = true
		return deck.Tab(tab), err
	}

	result := materialize.Text(resp.Text)
	if tab.Structured() {
		result = materialize.Structured(resp.Text)
	}
	if result.Failed() {
		log.Warn("response did not materialize", zap.Error(result.Err), zap.Int("raw_bytes", len(resp.Text)))
	}

	s.usage.RecordUsage(string(tab), resp.Usage.PromptTokens, resp.Usage.OutputTokens)
	deck := s.store.Dispatch(view.Succeed{Tab: tab, RequestID: id, Result: result})
	released = true

	log.Info("generation finished",
		zap.String("result", result.Kind.String()),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)
	return deck.Tab(tab), nil
}

// SaveCredential persists key and makes it the session credential.
func (s *Service) SaveCredential(key string) error {
	if err := s.creds.Set(key); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	stored, err := s.creds.Get()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}

	s.mu.Lock()
	s.session.Credential = strings.TrimSpace(stored)
	s.mu.Unlock()

	s.store.Dispatch(view.DismissNotice{})
	s.logger.Info("API key saved")
	return nil
}

// ClearCredential deletes the stored key and drops it from the session.
func (s *Service) ClearCredential() error {
	if err := s.creds.Clear(); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	s.mu.Lock()
	s.session.Credential = ""
	s.mu.Unlock()
	s.logger.Info("API key cleared")
	return nil
}

// SetModel changes the model for subsequent calls.
func (s *Service) SetModel(model string) {
	if model == "" {
		model = gemini.DefaultModel
	}
	s.mu.Lock()
	s.session.Model = model
	s.mu.Unlock()
}

// CurrentModel returns the model name in use.
func (s *Service) CurrentModel() string {
	return s.Session().Model
}

// SwitchTab makes tab the active view.
func (s *Service) SwitchTab(tab view.Tab) error {
	if _, ok := prompts.Parse(string(tab)); !ok {
		return fmt.Errorf("unknown view %q", tab)
	}
	s.store.Dispatch(view.SwitchTab{Tab: tab})
	return nil
}

// SetField stores a form value on tab. The value itself is not checked.
func (s *Service) SetField(tab view.Tab, name, value string) error {
	if !prompts.HasField(tab, name) {
		return fmt.Errorf("%s has no field %q", tab.Title(), name)
	}
	s.store.Dispatch(view.SetField{Tab: tab, Name: name, Value: value})
	return nil
}

// Clear resets the result panel of tab.
func (s *Service) Clear(tab view.Tab) {
	s.store.Dispatch(view.Clear{Tab: tab})
}

// Usage returns the session usage counters.
func (s *Service) Usage() storage.SessionUsage {
	return s.usage.Current()
}

// UsageStore exposes the usage ledger for history views.
func (s *Service) UsageStore() *storage.UsageStore {
	return s.usage
}
