// Package session runs tracker sessions: it owns the live state per session,
// applies actions through the engine and persists the roster cookie whenever
// the roster changes.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/initiative-tracker/internal/cookie"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/cookies"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

// Service defines the session operations
type Service interface {
	// Open loads the stored roster for a session, or starts empty. Opening an
	// open session returns its live state.
	Open(ctx context.Context, input *OpenInput) (*OpenOutput, error)

	// Dispatch applies an action and saves the cookie if the roster changed
	// Returns errors.NotFound if the session is not open
	// Returns the engine's error, state unchanged, if the action is rejected
	Dispatch(ctx context.Context, input *DispatchInput) (*DispatchOutput, error)

	// GetState returns the live state of an open session
	GetState(ctx context.Context, input *GetStateInput) (*GetStateOutput, error)

	// FillInitiatives rolls a d99 for every participant without an initiative
	FillInitiatives(ctx context.Context, input *FillInitiativesInput) (*FillInitiativesOutput, error)

	// ExportCookie returns the cookie value for the current roster
	ExportCookie(ctx context.Context, input *ExportCookieInput) (*ExportCookieOutput, error)

	// ImportCookie replaces the roster with the one in a cookie value
	// Returns errors.InvalidArgument if the value cannot be restored
	ImportCookie(ctx context.Context, input *ImportCookieInput) (*ImportCookieOutput, error)

	// Clear deletes the stored cookie and empties the roster
	Clear(ctx context.Context, input *ClearInput) (*ClearOutput, error)

	// Close forgets the live state; the stored cookie is kept
	Close(ctx context.Context, input *CloseInput) (*CloseOutput, error)
}

// Config holds the dependencies for the session orchestrator
type Config struct {
	Engine     *tracker.Engine
	Codec      *cookie.Codec
	Repository cookies.Repository
	// Roller overrides the toolkit's default dice for initiative rolls
	Roller dice.Roller
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Codec == nil {
		vb.RequiredField("Codec")
	}
	if c.Repository == nil {
		vb.RequiredField("Repository")
	}

	return vb.Build()
}

type orchestrator struct {
	engine *tracker.Engine
	codec  *cookie.Codec
	repo   cookies.Repository
	roller dice.Roller

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

// liveSession is the state of an open session and the cookie value last
// written for it
type liveSession struct {
	state  tracker.State
	cookie string
}

// NewOrchestrator creates a new session orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		engine:   cfg.Engine,
		codec:    cfg.Codec,
		repo:     cfg.Repository,
		roller:   cfg.Roller,
		sessions: make(map[string]*liveSession),
	}, nil
}

func (o *orchestrator) Open(ctx context.Context, input *OpenInput) (*OpenOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if live, ok := o.sessions[input.SessionID]; ok {
		return &OpenOutput{State: live.state}, nil
	}

	live := &liveSession{state: tracker.NewState()}
	out := &OpenOutput{}

	stored, err := o.repo.Get(ctx, cookies.GetInput{SessionID: input.SessionID})
	switch {
	case errors.IsNotFound(err):
		slog.Debug("No stored cookie, starting empty", "session_id", input.SessionID)
	case err != nil:
		return nil, errors.Wrapf(err, "failed to load cookie for session %s", input.SessionID)
	default:
		live.cookie = stored.Value
		state, parseErr := o.codec.Parse(stored.Value)
		if parseErr != nil {
			// a half-restored roster is worse than an empty one
			slog.Warn("Discarding unreadable cookie",
				"session_id", input.SessionID,
				"cookie_bytes", len(stored.Value),
				"error", parseErr)
			out.Discarded = true
		} else {
			out.Restored = state.Len() > 0
		}
		live.state = state
	}

	o.sessions[input.SessionID] = live
	out.State = live.state

	slog.Info("Opened session",
		"session_id", input.SessionID,
		"participants", live.state.Len(),
		"restored", out.Restored)

	return out, nil
}

func (o *orchestrator) Dispatch(ctx context.Context, input *DispatchInput) (*DispatchOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	live, err := o.live(input.SessionID)
	if err != nil {
		return nil, err
	}

	next, err := o.engine.Reduce(live.state, input.Action)
	if err != nil {
		if tracker.IsCorrupted(err) {
			slog.Error("Tracker state corrupted",
				"session_id", input.SessionID,
				"action", actionName(input.Action),
				"error", err)
		}
		return nil, err
	}
	live.state = next

	saved, err := o.persist(ctx, input.SessionID, live)
	if err != nil {
		return nil, err
	}

	slog.Debug("Applied action",
		"session_id", input.SessionID,
		"action", actionName(input.Action),
		"cookie_saved", saved)

	return &DispatchOutput{State: next, CookieSaved: saved}, nil
}

func (o *orchestrator) GetState(_ context.Context, input *GetStateInput) (*GetStateOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	live, err := o.live(input.SessionID)
	if err != nil {
		return nil, err
	}
	return &GetStateOutput{State: live.state}, nil
}

func (o *orchestrator) FillInitiatives(_ context.Context, input *FillInitiativesInput) (*FillInitiativesOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	live, err := o.live(input.SessionID)
	if err != nil {
		return nil, err
	}

	ordered, err := live.state.Ordered()
	if err != nil {
		return nil, err
	}

	state := live.state
	rolled := make(map[int]int)
	for _, p := range ordered {
		b := p.Common()
		if b.HasInitiative() {
			continue
		}
		value, err := o.rollInitiative()
		if err != nil {
			return nil, err
		}
		state, err = o.engine.Reduce(state, tracker.SetInitiative{ID: b.ID, Value: value})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to set rolled initiative for participant %d", b.ID)
		}
		rolled[b.ID] = value

		slog.Debug("Rolled initiative",
			"session_id", input.SessionID,
			"participant_id", p.GetID(),
			"participant_type", p.GetType(),
			"initiative", value)
	}
	live.state = state

	slog.Info("Rolled initiatives",
		"session_id", input.SessionID,
		"rolled", len(rolled))

	// initiative is round-scoped: the cookie cannot change here
	return &FillInitiativesOutput{State: state, Rolled: rolled}, nil
}

func (o *orchestrator) ExportCookie(_ context.Context, input *ExportCookieInput) (*ExportCookieOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	live, err := o.live(input.SessionID)
	if err != nil {
		return nil, err
	}
	value, err := cookie.Format(live.state)
	if err != nil {
		return nil, err
	}
	return &ExportCookieOutput{Value: value}, nil
}

func (o *orchestrator) ImportCookie(ctx context.Context, input *ImportCookieInput) (*ImportCookieOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	state, err := o.codec.Parse(input.Value)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "cookie rejected")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	live, err := o.live(input.SessionID)
	if err != nil {
		return nil, err
	}
	live.state = state
	if _, err := o.persist(ctx, input.SessionID, live); err != nil {
		return nil, err
	}

	slog.Info("Imported cookie",
		"session_id", input.SessionID,
		"participants", state.Len())

	return &ImportCookieOutput{State: state}, nil
}

func (o *orchestrator) Clear(ctx context.Context, input *ClearInput) (*ClearOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := o.repo.Delete(ctx, cookies.DeleteInput{SessionID: input.SessionID}); err != nil {
		return nil, errors.Wrapf(err, "failed to delete cookie for session %s", input.SessionID)
	}

	state := tracker.NewState()
	if live, ok := o.sessions[input.SessionID]; ok {
		live.state = state
		live.cookie = ""
	}

	slog.Info("Cleared session", "session_id", input.SessionID)

	return &ClearOutput{State: state}, nil
}

func (o *orchestrator) Close(_ context.Context, input *CloseInput) (*CloseOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	o.mu.Lock()
	delete(o.sessions, input.SessionID)
	o.mu.Unlock()

	return &CloseOutput{}, nil
}

func (o *orchestrator) live(sessionID string) (*liveSession, error) {
	live, ok := o.sessions[sessionID]
	if !ok {
		return nil, errors.NotFoundf("session %s is not open", sessionID).
			WithMeta("session_id", sessionID)
	}
	return live, nil
}

// persist writes the cookie when its encoded value differs from the last one
// written. Must be called with the write lock held.
func (o *orchestrator) persist(ctx context.Context, sessionID string, live *liveSession) (bool, error) {
	value, err := cookie.Format(live.state)
	if err != nil {
		return false, err
	}
	if value == live.cookie {
		return false, nil
	}

	if _, err := o.repo.Save(ctx, cookies.SaveInput{SessionID: sessionID, Value: value}); err != nil {
		return false, errors.Wrapf(err, "failed to save cookie for session %s", sessionID)
	}
	live.cookie = value
	return true, nil
}

func actionName(a tracker.Action) string {
	switch a.(type) {
	case tracker.AddMonster:
		return "add_monster"
	case tracker.AddCharacter:
		return "add_character"
	case tracker.AddSummon:
		return "add_summon"
	case tracker.AddAlly:
		return "add_ally"
	case tracker.DeleteParticipant:
		return "delete_participant"
	case tracker.DeleteSummon:
		return "delete_summon"
	case tracker.SetInitiative:
		return "set_initiative"
	case tracker.SetTurnComplete:
		return "set_turn_complete"
	case tracker.ResetForNewRound:
		return "reset_for_new_round"
	case tracker.BeginRound:
		return "begin_round"
	case tracker.Shift:
		return "shift"
	default:
		return "unknown"
	}
}
