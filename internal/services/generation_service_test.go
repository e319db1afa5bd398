package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"codeloom/internal/llm/client"
	"codeloom/internal/llm/prompt"
	"codeloom/internal/models"
	"codeloom/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPatch = `[{"path": "index.html", "content": "<!doctype html>"}, {"path": "app.js", "content": "console.log(1)"}]`

// scriptedGateway pops one response per Generate call.
type scriptedGateway struct {
	mu        sync.Mutex
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	text string
	err  error
}

func (g *scriptedGateway) Generate(ctx context.Context, system string, parts []prompt.Part, cfg client.GenerationConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.responses) == 0 {
		return "", fmt.Errorf("unexpected call %d", g.calls)
	}
	next := g.responses[0]
	g.responses = g.responses[1:]
	return next.text, next.err
}

func fixedFactory(g client.Gateway) GatewayFactory {
	return func(ctx context.Context, providerID, tier string, cfg client.GenerationConfig) (client.Gateway, error) {
		return g, nil
	}
}

func newTestService(g client.Gateway) *GenerationService {
	svc := NewGenerationService(fixedFactory(g))
	svc.SetBackoffBase(time.Millisecond)
	return svc
}

func baseInput() TurnInput {
	return TurnInput{
		ProjectName: "demo",
		Prompt:      "build a landing page",
		Platform:    models.PlatformWeb,
		Language:    "javascript",
	}
}

func TestRunTurn_GreenfieldFirstAttempt(t *testing.T) {
	gw := &scriptedGateway{responses: []scriptedResponse{{text: validPatch}}}
	svc := newTestService(gw)

	res, err := svc.RunTurn(context.Background(), baseInput())
	require.NoError(t, err)
	assert.Equal(t, models.ModeGreenfield, res.Mode)
	assert.Equal(t, models.TierFast, res.EffectiveTier)
	assert.Equal(t, 1, res.Attempts)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "index.html", res.Files[0].Path)
}

func TestRunTurn_RetriesTransientThenSucceeds(t *testing.T) {
	gw := &scriptedGateway{responses: []scriptedResponse{
		{err: &client.GatewayError{Kind: client.KindTransport, Err: errors.New("connection reset")}},
		{text: "I could not produce the files you asked for."},
		{text: validPatch},
	}}
	svc := newTestService(gw)

	var delays []time.Duration
	svc.SetSleeper(func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	})

	res, err := svc.RunTurn(context.Background(), baseInput())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, gw.calls)
	// Exponential: base, then 2x base
	require.Len(t, delays, 2)
	assert.Equal(t, time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
}

func TestRunTurn_FatalErrorDoesNotRetry(t *testing.T) {
	gw := &scriptedGateway{responses: []scriptedResponse{
		{err: &client.GatewayError{Kind: client.KindQuotaExceeded, Err: errors.New("quota exhausted")}},
	}}
	svc := newTestService(gw)

	_, err := svc.RunTurn(context.Background(), baseInput())
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 1, genErr.Attempts)
	assert.Equal(t, 1, gw.calls)
}

func TestRunTurn_BudgetExhausted(t *testing.T) {
	gw := &scriptedGateway{responses: []scriptedResponse{
		{text: "not json"},
		{text: "still not json"},
		{text: "definitely not json"},
	}}
	svc := newTestService(gw)

	_, err := svc.RunTurn(context.Background(), baseInput())
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, maxRetries, genErr.Attempts)
	assert.Equal(t, maxRetries, gw.calls)
}

func TestRunTurn_ModificationMergePreservesOrder(t *testing.T) {
	gw := &scriptedGateway{responses: []scriptedResponse{
		{text: `[{"path": "b.js", "content": "updated"}, {"path": "d.js", "content": "new"}]`},
	}}
	svc := newTestService(gw)

	in := baseInput()
	in.CurrentFiles = []models.FileRecord{
		{Path: "a.js", Content: "a"},
		{Path: "b.js", Content: "b"},
		{Path: "c.js", Content: "c"},
	}

	res, err := svc.RunTurn(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.ModeModification, res.Mode)

	paths := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"a.js", "b.js", "c.js", "d.js"}, paths)
	assert.Equal(t, "updated", res.Files[1].Content)
	// Input slice stays untouched
	assert.Equal(t, "b", in.CurrentFiles[1].Content)
}

func TestRunTurn_DropsInvalidPatchPaths(t *testing.T) {
	gw := &scriptedGateway{responses: []scriptedResponse{
		{text: `[{"path": "../evil.sh", "content": "rm -rf /"}, {"path": "/etc/passwd", "content": "x"}, {"path": "src/ok.js", "content": "fine"}]`},
	}}
	svc := newTestService(gw)

	res, err := svc.RunTurn(context.Background(), baseInput())
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "src/ok.js", res.Files[0].Path)
	for _, f := range res.Files {
		assert.NoError(t, workspace.ValidatePath(f.Path))
	}
}

func TestRunTurn_AllInvalidPathsRetries(t *testing.T) {
	gw := &scriptedGateway{responses: []scriptedResponse{
		{text: `[{"path": "../a", "content": "x"}]`},
		{text: validPatch},
	}}
	svc := newTestService(gw)
	svc.SetSleeper(func(ctx context.Context, d time.Duration) error { return nil })

	res, err := svc.RunTurn(context.Background(), baseInput())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, res.Files, 2)
}

func TestRunTurn_ComplexPromptUpgradesTier(t *testing.T) {
	gw := &scriptedGateway{responses: []scriptedResponse{{text: validPatch}}}
	svc := newTestService(gw)

	in := baseInput()
	in.Prompt = "design a distributed microservice architecture with authentication"

	res, err := svc.RunTurn(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.TierReasoning, res.EffectiveTier)
}

func TestRunTurn_LatestWins(t *testing.T) {
	release := make(chan struct{})
	slow := gatewayFunc(func(ctx context.Context, system string, parts []prompt.Part, cfg client.GenerationConfig) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-release:
			return validPatch, nil
		}
	})
	fast := &scriptedGateway{responses: []scriptedResponse{{text: validPatch}}}

	var mu sync.Mutex
	current := client.Gateway(slow)
	svc := NewGenerationService(func(ctx context.Context, providerID, tier string, cfg client.GenerationConfig) (client.Gateway, error) {
		mu.Lock()
		defer mu.Unlock()
		return current, nil
	})
	svc.SetBackoffBase(time.Millisecond)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.RunTurn(context.Background(), baseInput())
		firstDone <- err
	}()

	// Wait until the first turn has registered before starting the second.
	assert.Eventually(t, func() bool {
		svc.turnMu.Lock()
		defer svc.turnMu.Unlock()
		return len(svc.turns) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	current = fast
	mu.Unlock()

	res, err := svc.RunTurn(context.Background(), baseInput())
	require.NoError(t, err)
	require.Len(t, res.Files, 2)

	close(release)
	assert.ErrorIs(t, <-firstDone, ErrSuperseded)
}

type gatewayFunc func(ctx context.Context, system string, parts []prompt.Part, cfg client.GenerationConfig) (string, error)

func (f gatewayFunc) Generate(ctx context.Context, system string, parts []prompt.Part, cfg client.GenerationConfig) (string, error) {
	return f(ctx, system, parts, cfg)
}
