package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/rcflow/internal/runtime"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(opts ...runtime.Option) *runtime.Service {
	return runtime.New(append([]runtime.Option{runtime.WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

// docksProject: start -> honor gate -> (true) welcome | (false) warning.
// welcome offers a job that sets a variable and ends; warning just ends.
func docksProject() *domain.Project {
	b := dsl.New()
	b.Add("start").Start().Go("gate")
	b.Add("gate").Condition("honor_level", domain.OpGreater, "50").True("welcome").False("warning")
	b.Add("welcome").Dialogue("Marcus", "Good to see you.").
		Choice("c_job", "Any work?", "set_job").
		Choice("c_bye", "Bye", "end").
		Choice("c_loose", "Hmm", "")
	b.Add("warning").Dialogue("Marcus", "Get lost.").Choice("c_ok", "Ok", "end")
	b.Add("set_job").Set("job", "docks").Go("job_offer")
	b.Add("job_offer").Dialogue("Marcus", "Unload the boat.").Choice("c_fine", "Fine", "end")
	b.Add("end").End()
	return b.Project("proj_docks", "Docks")
}

func TestService_Start(t *testing.T) {
	svc := newService(runtime.WithInitialMemory(domain.GameMemory{"honor_level": 55}))

	out, err := svc.Start(context.Background(), docksProject(), "sess-1")
	require.NoError(t, err)

	assert.False(t, out.Closed)
	require.NotNil(t, out.View)
	assert.Equal(t, "welcome", out.View.NodeID)
	assert.Equal(t, "Marcus", out.View.Name)
	assert.Equal(t, "proj_docks", out.View.ProjectID)
	assert.Equal(t, []domain.ChoiceView{
		{ID: "c_job", Text: "Any work?"},
		{ID: "c_bye", Text: "Bye"},
		{ID: "c_loose", Text: "Hmm"},
	}, out.View.Choices)

	it := out.Interaction
	assert.Equal(t, "sess-1", it.SessionID)
	assert.Equal(t, domain.StatusActive, it.Status)
	assert.Equal(t, "welcome", it.CurrentNodeID)
	assert.Equal(t, []string{"welcome"}, it.History)
	assert.Equal(t, fixedNow, it.StartedAt)
	assert.Nil(t, out.MemoryDelta)
}

func TestService_Start_InitialMemoryIsCopied(t *testing.T) {
	initial := domain.GameMemory{"honor_level": 10}
	svc := newService(runtime.WithInitialMemory(initial))

	out, err := svc.Start(context.Background(), docksProject(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "warning", out.Interaction.CurrentNodeID)

	out.Interaction.Memory["honor_level"] = 99
	initial["honor_level"] = 99

	again, err := svc.Start(context.Background(), docksProject(), "sess-2")
	require.NoError(t, err)
	assert.Equal(t, "warning", again.Interaction.CurrentNodeID)
}

func TestService_Start_Errors(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	b := dsl.New()
	b.Add("d1").Dialogue("Marcus", "Hi")
	_, err := svc.Start(ctx, b.Project("p1", "No start"), "s")
	assert.ErrorIs(t, err, domain.ErrNoStartNode)

	b = dsl.New()
	b.Add("start").Start().Go("ghost")
	_, err = svc.Start(ctx, b.Project("p2", "Dangling"), "s")
	assert.ErrorIs(t, err, domain.ErrNoPath)
}

func TestService_Start_StraightToEnd(t *testing.T) {
	b := dsl.New()
	b.Add("start").Start().Go("end")
	b.Add("end").End()

	out, err := newService().Start(context.Background(), b.Project("p", "Short"), "s")
	require.NoError(t, err)
	assert.True(t, out.Closed)
	assert.Equal(t, runtime.ReasonEnd, out.Reason)
	assert.Nil(t, out.View)
	assert.Equal(t, domain.StatusClosed, out.Interaction.Status)
	assert.Equal(t, "end", out.Interaction.CurrentNodeID)
}

func TestService_Select(t *testing.T) {
	svc := newService(runtime.WithInitialMemory(domain.GameMemory{"honor_level": 55}))
	ctx := context.Background()
	p := docksProject()

	start, err := svc.Start(ctx, p, "sess-1")
	require.NoError(t, err)

	out, err := svc.Select(ctx, p, start.Interaction, "welcome", "c_job")
	require.NoError(t, err)
	assert.False(t, out.Closed)
	assert.Equal(t, "job_offer", out.View.NodeID)
	assert.Equal(t, map[string]any{"job": "docks"}, out.MemoryDelta)
	assert.Equal(t, []string{"welcome", "job_offer"}, out.Interaction.History)

	assert.Equal(t, "welcome", start.Interaction.CurrentNodeID, "the input interaction is not modified")
	assert.NotContains(t, start.Interaction.Memory, "job")

	done, err := svc.Select(ctx, p, out.Interaction, "job_offer", "c_fine")
	require.NoError(t, err)
	assert.True(t, done.Closed)
	assert.Equal(t, runtime.ReasonEnd, done.Reason)
	assert.Equal(t, "docks", done.Interaction.Memory.Lookup("job"))
}

func TestService_Select_FallsBackToNextNodeID(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	next := "d2"
	p := &domain.Project{
		ID: "p",
		Data: domain.FlowGraph{
			Nodes: []domain.Node{
				{ID: "start", Kind: domain.KindStart},
				{ID: "d1", Kind: domain.KindDialogue, Data: domain.NodeData{Choices: []domain.Choice{{ID: "c1", NextNodeID: &next}}}},
				{ID: "d2", Kind: domain.KindDialogue, Data: domain.NodeData{Text: "Second"}},
			},
			Connections: []domain.Connection{
				{ID: "k1", FromNodeID: "start", FromPort: domain.PortMain, ToNodeID: "d1"},
			},
		},
	}

	start, err := svc.Start(ctx, p, "s")
	require.NoError(t, err)

	out, err := svc.Select(ctx, p, start.Interaction, "d1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "d2", out.View.NodeID)
}

func TestService_Select_NoTargetCloses(t *testing.T) {
	svc := newService(runtime.WithInitialMemory(domain.GameMemory{"honor_level": 55}))
	ctx := context.Background()
	p := docksProject()

	start, err := svc.Start(ctx, p, "s")
	require.NoError(t, err)

	out, err := svc.Select(ctx, p, start.Interaction, "welcome", "c_loose")
	require.NoError(t, err)
	assert.True(t, out.Closed)
	assert.Equal(t, runtime.ReasonNoPath, out.Reason)
	assert.Equal(t, domain.StatusClosed, out.Interaction.Status)
}

func TestService_Select_Errors(t *testing.T) {
	svc := newService(runtime.WithInitialMemory(domain.GameMemory{"honor_level": 55}))
	ctx := context.Background()
	p := docksProject()

	start, err := svc.Start(ctx, p, "s")
	require.NoError(t, err)
	it := start.Interaction

	_, err = svc.Select(ctx, p, it, "warning", "c_ok")
	assert.ErrorIs(t, err, domain.ErrStaleNode)

	_, err = svc.Select(ctx, p, it, "welcome", "c_missing")
	assert.ErrorIs(t, err, domain.ErrChoiceNotFound)

	closed := svc.Cancel(ctx, it)
	assert.Equal(t, runtime.ReasonCancelled, closed.Reason)
	_, err = svc.Select(ctx, p, closed.Interaction, "welcome", "c_job")
	assert.ErrorIs(t, err, domain.ErrInteractionClosed)

	edited := docksProject()
	edited.Data.Nodes = edited.Data.Nodes[:1]
	_, err = svc.Select(ctx, edited, it, "welcome", "c_job")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestService_LifecycleHooks(t *testing.T) {
	var entered, variables, closes []string
	var starts int
	var traversals []*domain.TraversalEvent

	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.NodeID+":"+e.Port)
		},
		OnVariableSet: func(_ context.Context, e *domain.VariableEvent) {
			variables = append(variables, e.Variable+"="+e.Value)
		},
		OnTraversalEnd: func(_ context.Context, e *domain.TraversalEvent) {
			traversals = append(traversals, e)
		},
		OnInteractionStart: func(_ context.Context, e *domain.InteractionEvent) {
			starts++
			assert.Equal(t, "proj_docks", e.ProjectID)
		},
		OnInteractionClose: func(_ context.Context, e *domain.InteractionEvent) {
			closes = append(closes, e.Reason)
		},
	}

	svc := newService(
		runtime.WithInitialMemory(domain.GameMemory{"honor_level": 55}),
		runtime.WithLifecycleHooks(hooks),
	)
	ctx := context.Background()
	p := docksProject()

	start, err := svc.Start(ctx, p, "sess-1")
	require.NoError(t, err)
	out, err := svc.Select(ctx, p, start.Interaction, "welcome", "c_job")
	require.NoError(t, err)
	_, err = svc.Select(ctx, p, out.Interaction, "job_offer", "c_fine")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"start:", "gate:true", "welcome:",
		"set_job:", "job_offer:",
		"end:",
	}, entered)
	assert.Equal(t, []string{"job=docks"}, variables)
	assert.Equal(t, 1, starts)
	assert.Equal(t, []string{runtime.ReasonEnd}, closes)

	require.Len(t, traversals, 3)
	assert.Equal(t, "start", traversals[0].StartNodeID)
	assert.Equal(t, "welcome", traversals[0].NodeID)
	assert.Equal(t, 3, traversals[0].Steps)
	assert.Equal(t, "sess-1", traversals[0].SessionID)
	assert.Equal(t, fixedNow, traversals[0].Timestamp)
}

func TestService_Traverse(t *testing.T) {
	var visits int
	svc := newService(
		runtime.WithMaxIterations(5),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnNodeEnter: func(context.Context, *domain.NodeEvent) { visits++ },
		}),
	)

	b := dsl.New()
	b.Add("a").Event("ping", "").Go("b")
	b.Add("b").Event("pong", "").Go("a")
	g := b.Build()

	res := svc.Traverse(context.Background(), &g, "a", domain.GameMemory{})
	assert.False(t, res.Found)
	assert.Equal(t, 5, res.Steps)
	assert.Equal(t, 5, visits)
}
