package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"codeloom/internal/events"
	"codeloom/internal/llm/client"
	"codeloom/internal/llm/parser"
	"codeloom/internal/llm/prompt"
	"codeloom/internal/llm/router"
	"codeloom/internal/models"
	"codeloom/internal/workspace"
)

const (
	maxRetries         = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// ErrSuperseded marks a turn that lost the latest-wins race. Its result
// is discarded silently; nothing is surfaced to the user.
var ErrSuperseded = errors.New("turn superseded by a newer one")

// GenerationError is the terminal failure of a whole turn after the
// retry budget is spent or a fatal upstream refusal.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GatewayFactory builds a gateway for a provider and tier. Indirection
// exists so tests can substitute a fake model.
type GatewayFactory func(ctx context.Context, providerID, tier string, cfg client.GenerationConfig) (client.Gateway, error)

// TurnInput is everything one user turn contributes.
type TurnInput struct {
	ProjectName   string
	Prompt        string
	Provider      string
	RequestedTier string
	Platform      string
	Language      string
	CurrentFiles  []models.FileRecord
	History       []models.ChatTurn
	Attachments   []models.Attachment
}

// TurnResult carries the outcome of a successful turn.
type TurnResult struct {
	Files         []models.FileRecord
	Patch         []models.FileRecord
	Mode          string
	EffectiveTier string
	Attempts      int
}

type turnState struct {
	id     uint64
	cancel context.CancelFunc
}

// GenerationService drives a user turn through routing, prompt assembly,
// the gateway, tolerant parsing and the merge, with retries in between.
type GenerationService struct {
	newGateway  GatewayFactory
	backoffBase time.Duration
	sleep       func(ctx context.Context, d time.Duration) error

	turnMu sync.Mutex
	turns  map[string]*turnState
	seq    uint64
}

func NewGenerationService(factory GatewayFactory) *GenerationService {
	return &GenerationService{
		newGateway:  factory,
		backoffBase: defaultBackoffBase,
		sleep:       sleepCtx,
		turns:       make(map[string]*turnState),
	}
}

// SetBackoffBase overrides the exponential backoff base, used by tests.
func (s *GenerationService) SetBackoffBase(d time.Duration) {
	if d >= 0 {
		s.backoffBase = d
	}
}

// SetSleeper overrides the backoff sleeper, used by tests to observe
// delays without waiting them out.
func (s *GenerationService) SetSleeper(f func(ctx context.Context, d time.Duration) error) {
	if f != nil {
		s.sleep = f
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// beginTurn registers a new turn for the project and cancels any
// outstanding one: latest wins.
func (s *GenerationService) beginTurn(ctx context.Context, project string) (context.Context, uint64, context.CancelFunc) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	if prev, ok := s.turns[project]; ok && prev.cancel != nil {
		prev.cancel()
	}
	s.seq++
	id := s.seq
	turnCtx, cancel := context.WithCancel(ctx)
	s.turns[project] = &turnState{id: id, cancel: cancel}
	return turnCtx, id, cancel
}

// isCurrent reports whether the turn still owns the project slot.
func (s *GenerationService) isCurrent(project string, id uint64) bool {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	st, ok := s.turns[project]
	return ok && st.id == id
}

// RunTurn executes one generation turn and returns the next workspace.
// The input file list is never mutated; partial results never leak.
func (s *GenerationService) RunTurn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	mode := models.ModeModification
	if len(in.CurrentFiles) == 0 {
		mode = models.ModeGreenfield
	}
	if in.RequestedTier == "" {
		in.RequestedTier = models.TierFast
	}
	if in.Provider == "" {
		in.Provider = "gemini"
	}

	turnCtx, turnID, cancel := s.beginTurn(ctx, in.ProjectName)
	defer cancel()

	effectiveTier := router.Route(in.Prompt, in.RequestedTier)
	cfg := client.ConfigForTier(effectiveTier)

	systemInstruction, parts, err := prompt.Build(prompt.Input{
		Mode:         mode,
		Platform:     in.Platform,
		Language:     in.Language,
		ProjectName:  in.ProjectName,
		UserText:     in.Prompt,
		CurrentFiles: in.CurrentFiles,
		History:      in.History,
		Attachments:  in.Attachments,
	})
	if err != nil {
		return nil, &GenerationError{Attempts: 0, Err: err}
	}

	gateway, err := s.newGateway(turnCtx, in.Provider, effectiveTier, cfg)
	if err != nil {
		return nil, &GenerationError{Attempts: 0, Err: err}
	}

	events.Emit(turnCtx, events.GenerationStarted,
		events.NewEvent(events.EventInfo, "turn started").
			WithMetadata("project", in.ProjectName).
			WithMetadata("tier", effectiveTier).
			WithMetadata("mode", mode))

	var (
		patch   []models.FileRecord
		lastErr error
	)
	attempts := 0
	for k := 0; k < maxRetries; k++ {
		attempts++
		events.Emit(turnCtx, events.GenerationAttempt,
			events.NewEvent(events.EventInfo, "calling model").WithMetadata("attempt", strconv.Itoa(attempts)))

		text, genErr := gateway.Generate(turnCtx, systemInstruction, parts, cfg)
		if genErr != nil {
			lastErr = genErr
			if !retryable(genErr) {
				break
			}
		} else {
			files, parseErr := parser.Files(text)
			if parseErr == nil {
				files = sanitizePatch(files)
			}
			if parseErr == nil && len(files) > 0 {
				patch = files
				lastErr = nil
				break
			}
			if parseErr != nil {
				lastErr = parseErr
			} else {
				lastErr = fmt.Errorf("model returned no usable file entries")
			}
		}

		if k == maxRetries-1 {
			break
		}
		delay := s.backoffBase * (1 << k)
		events.Emit(turnCtx, events.GenerationRetry,
			events.NewEvent(events.EventWarn, fmt.Sprintf("attempt %d failed: %v", attempts, lastErr)).
				WithMetadata("backoff", delay.String()))
		if err := s.sleep(turnCtx, delay); err != nil {
			lastErr = err
			break
		}
	}

	if !s.isCurrent(in.ProjectName, turnID) {
		log.Printf("generation: discarding superseded turn %d for %s", turnID, in.ProjectName)
		return nil, ErrSuperseded
	}
	if turnCtx.Err() != nil && patch == nil {
		return nil, ErrSuperseded
	}

	if patch == nil {
		events.Emit(turnCtx, events.GenerationFailed,
			events.NewEvent(events.EventError, fmt.Sprintf("turn failed: %v", lastErr)))
		return nil, &GenerationError{Attempts: attempts, Err: lastErr}
	}

	next := workspace.Merge(nil, patch)
	if mode == models.ModeModification {
		next = workspace.Merge(in.CurrentFiles, patch)
	}

	events.Emit(turnCtx, events.GenerationDone,
		events.NewEvent(events.EventSuccess, fmt.Sprintf("turn produced %d file(s)", len(patch))).
			WithMetadata("attempts", strconv.Itoa(attempts)))

	return &TurnResult{
		Files:         next,
		Patch:         patch,
		Mode:          mode,
		EffectiveTier: effectiveTier,
		Attempts:      attempts,
	}, nil
}

// sanitizePatch drops entries whose path fails workspace validation.
// Models occasionally emit absolute or traversal paths; those must never
// reach the merge. Dropping mirrors how the parser treats malformed
// entries; a patch with nothing left counts as a failed attempt.
func sanitizePatch(patch []models.FileRecord) []models.FileRecord {
	out := make([]models.FileRecord, 0, len(patch))
	for _, f := range patch {
		if err := workspace.ValidatePath(f.Path); err != nil {
			log.Printf("generation: dropped patch entry %q: %v", f.Path, err)
			continue
		}
		out = append(out, f)
	}
	return out
}

// retryable mirrors the gateway taxonomy: transport, timeout and flaky
// model output retry; quota and invalid-request refusals do not.
func retryable(err error) bool {
	var gerr *client.GatewayError
	if errors.As(err, &gerr) {
		return gerr.Retryable()
	}
	return true
}
