package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"c2ms/internal/domain/clients"
	"c2ms/internal/domain/expenses"
	"c2ms/internal/domain/reports"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/config"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/metrics"
	"c2ms/internal/platform/period"
)

// scripted replays outputs in order and records what it was sent.
type scripted struct {
	outputs []Output
	seen    [][]Turn
	tools   [][]ToolSpec
}

func (s *scripted) Generate(_ context.Context, _ string, turns []Turn, tools []ToolSpec) (Output, error) {
	s.seen = append(s.seen, append([]Turn(nil), turns...))
	s.tools = append(s.tools, tools)
	if len(s.outputs) == 0 {
		return Output{}, errors.New("script exhausted")
	}
	out := s.outputs[0]
	s.outputs = s.outputs[1:]
	return out, nil
}

func echoTool(name string, fn func(map[string]any) (any, error)) Tool {
	return Tool{
		Spec: ToolSpec{Name: name},
		Run:  func(_ context.Context, args map[string]any) (any, error) { return fn(args) },
	}
}

func TestReplyPlainText(t *testing.T) {
	model := &scripted{outputs: []Output{{Text: " Halo! "}}}
	b := NewBridge(model, "sys", 3, nil)

	answer, err := b.Reply(context.Background(), []Message{{Role: "assistant", Text: "Ada yang bisa dibantu?"}}, "hai")
	require.NoError(t, err)
	assert.Equal(t, "Halo!", answer.Text)
	assert.Empty(t, answer.ToolsUsed)
	require.Len(t, model.seen[0], 2)
	assert.Equal(t, RoleModel, model.seen[0][0].Role)
}

func TestReplyRunsToolsAndReturnsErrorsToModel(t *testing.T) {
	model := &scripted{outputs: []Output{
		{Calls: []ToolCall{
			{ID: "1", Name: "ok", Args: map[string]any{"n": 2.0}},
			{ID: "2", Name: "broken"},
			{ID: "3", Name: "missing"},
		}},
		{Text: "Selesai"},
	}}
	collector := metrics.New()
	b := NewBridge(model, "", 3, collector,
		echoTool("ok", func(args map[string]any) (any, error) { return []int{int(args["n"].(float64))}, nil }),
		echoTool("broken", func(map[string]any) (any, error) { return nil, errors.New("database unavailable") }),
	)

	answer, err := b.Reply(context.Background(), nil, "berapa?")
	require.NoError(t, err)
	assert.Equal(t, "Selesai", answer.Text)
	assert.Equal(t, []string{"ok", "broken", "missing"}, answer.ToolsUsed)

	require.Len(t, model.seen, 2)
	results := model.seen[1][2].Results
	require.Len(t, results, 3)
	assert.Equal(t, map[string]any{"result": []any{2.0}}, results[0].Response)
	assert.Equal(t, map[string]any{"error": "database unavailable"}, results[1].Response)
	assert.Contains(t, results[2].Response["error"], "unknown tool")
	assert.Equal(t, "2", results[1].ID)
	assert.Equal(t, uint64(3), collector.Snapshot().ChatToolCalls)
}

func TestReplyStopsOfferingToolsAfterMaxRounds(t *testing.T) {
	call := Output{Calls: []ToolCall{{Name: "ok"}}}
	model := &scripted{outputs: []Output{call, call, {Text: "ringkasan", Calls: []ToolCall{{Name: "ok"}}}}}
	runs := 0
	b := NewBridge(model, "", 2, nil, echoTool("ok", func(map[string]any) (any, error) {
		runs++
		return map[string]any{"ok": true}, nil
	}))

	answer, err := b.Reply(context.Background(), nil, "loop")
	require.NoError(t, err)
	assert.Equal(t, "ringkasan", answer.Text)
	assert.Equal(t, 2, runs)
	require.Len(t, model.tools, 3)
	assert.NotNil(t, model.tools[1])
	assert.Nil(t, model.tools[2])
}

func TestReplyRejectsEmptyMessage(t *testing.T) {
	_, err := NewBridge(&scripted{}, "", 3, nil).Reply(context.Background(), nil, "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestReplyWrapsModelError(t *testing.T) {
	_, err := NewBridge(&scripted{}, "", 3, nil).Reply(context.Background(), nil, "hai")
	assert.ErrorContains(t, err, "script exhausted")
}

func TestDeclarations(t *testing.T) {
	decls := declarations([]ToolSpec{{
		Name: ToolTransactionStats,
		Params: []Param{
			{Name: "period", Type: "string", Enum: []string{"today"}, Required: true},
			{Name: "limit", Type: "integer"},
		},
	}})
	require.Len(t, decls, 1)
	assert.Equal(t, genai.TypeObject, decls[0].Parameters.Type)
	assert.Equal(t, []string{"period"}, decls[0].Parameters.Required)
	assert.Equal(t, genai.TypeInteger, decls[0].Parameters.Properties["limit"].Type)
}

func TestContentsSkipsEmptyTurns(t *testing.T) {
	got := contents([]Turn{
		{Role: RoleUser, Text: "hai"},
		{Role: RoleModel},
		{Role: RoleModel, Calls: []ToolCall{{ID: "x", Name: "ok"}}},
		{Role: RoleUser, Results: []ToolResult{{ID: "x", Name: "ok", Response: map[string]any{"a": 1}}}},
	})
	require.Len(t, got, 3)
	assert.Equal(t, string(genai.RoleModel), got[1].Role)
	assert.Equal(t, "x", got[1].Parts[0].FunctionCall.ID)
	assert.Equal(t, "ok", got[2].Parts[0].FunctionResponse.Name)
}

func newTools(t *testing.T) (map[string]Tool, *transactions.Service) {
	t.Helper()
	backend := docstore.NewMemory()
	profile := config.DefaultProfile()
	profile.Timezone = "UTC"
	clientSvc := clients.NewService(backend)
	txSvc := transactions.NewService(backend, clientSvc, decimal.RequireFromString("0.011"))
	reportSvc := reports.NewService(txSvc, expenses.NewService(backend), clientSvc, profile)
	now := func() time.Time { return time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC) }

	byName := map[string]Tool{}
	for _, tool := range Tools(reportSvc, txSvc, now) {
		byName[tool.Spec.Name] = tool
	}
	return byName, txSvc
}

func TestToolsAgainstServices(t *testing.T) {
	tools, txSvc := newTools(t)
	ctx := context.Background()
	require.Len(t, tools, 4)

	created, err := txSvc.Create(ctx, transactions.Details{
		Tanggal:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Pengirim: transactions.Party{Nama: "Budi"},
		Tujuan:   "Makassar",
		Jumlah:   decimal.NewFromInt(250000),
	})
	require.NoError(t, err)

	summary, err := tools[ToolDashboardSummary].Run(ctx, map[string]any{})
	require.NoError(t, err)
	assert.True(t, summary.(map[string]any)["revenue"].(decimal.Decimal).Equal(decimal.NewFromInt(250000)))

	_, err = tools[ToolDashboardSummary].Run(ctx, map[string]any{"startDate": "2026-03-10", "endDate": "2026-03-01"})
	assert.Error(t, err)

	stats, err := tools[ToolTransactionStats].Run(ctx, map[string]any{"period": "month"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.(reports.TransactionStats).Count)

	found, err := tools[ToolSearchTransaction].Run(ctx, map[string]any{"query": created.NoSTT})
	require.NoError(t, err)
	assert.Equal(t, "Budi", found.(map[string]any)["pengirim"])

	_, err = tools[ToolSearchTransaction].Run(ctx, map[string]any{"query": "STT-0000-99999"})
	assert.ErrorIs(t, err, transactions.ErrNotFound)

	recent, err := tools[ToolRecentTransactions].Run(ctx, map[string]any{"limit": "3"})
	require.NoError(t, err)
	assert.Equal(t, 1, recent.(map[string]any)["count"])
}

func TestDashboardToolRejectsOverlongRange(t *testing.T) {
	tools, _ := newTools(t)
	ctx := context.Background()

	_, err := tools[ToolDashboardSummary].Run(ctx, map[string]any{"startDate": "0001-01-01", "endDate": "9999-12-31"})
	assert.ErrorIs(t, err, period.ErrTooLong)

	_, err = tools[ToolDashboardSummary].Run(ctx, map[string]any{"startDate": "2025-01-01", "endDate": "2026-03-20"})
	assert.NoError(t, err)

	bridge := &Bridge{tools: tools}
	resp := bridge.run(ctx, ToolCall{ID: "1", Name: ToolDashboardSummary, Args: map[string]any{"startDate": "1900-01-01"}})
	assert.Contains(t, resp["error"], "longer than")
}
