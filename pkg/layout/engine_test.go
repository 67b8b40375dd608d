package layout

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

func chainRequest(n int) Request {
	req := Request{GraphWidth: GraphWidth, GraphHeight: GraphHeight}
	for i := 0; i < n; i++ {
		req.Nodes = append(req.Nodes, NodeData{ID: model.PersonID(fmt.Sprintf("n%d", i))})
		if i > 0 {
			req.Links = append(req.Links, LinkData{
				Source: model.PersonID(fmt.Sprintf("n%d", i-1)),
				Target: model.PersonID(fmt.Sprintf("n%d", i)),
				Weight: 1,
			})
		}
	}
	return req
}

func drain(t *testing.T, ch <-chan Message) []Message {
	t.Helper()
	var msgs []Message
	timeout := time.After(30 * time.Second)
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return msgs
			}
			msgs = append(msgs, m)
		case <-timeout:
			t.Fatal("layout run did not finish")
		}
	}
}

func TestDefaultIterations(t *testing.T) {
	assert.Equal(t, 300, DefaultConfig().Iterations())
}

func TestIterationsIgnoreGraphSize(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("tick count depends only on decay constants", prop.ForAll(
		func(alphaMin, alphaDecay float64, nodes int) bool {
			cfg := DefaultConfig()
			cfg.AlphaMin, cfg.AlphaDecay = alphaMin, alphaDecay
			want := int(math.Ceil(math.Log(alphaMin)/math.Log(1-alphaDecay) - 1e-9))
			sim := NewSimulation(chainRequest(nodes), cfg)
			return cfg.Iterations() == want && sim.cfg.Iterations() == want
		},
		gen.Float64Range(0.0001, 0.1),
		gen.Float64Range(0.005, 0.2),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}

func TestBatchSize(t *testing.T) {
	assert.Equal(t, 3, BatchSize(10))
	assert.Equal(t, 3, BatchSize(1000))
	assert.Equal(t, 1, BatchSize(1001))
}

func TestRunEmptyRequest(t *testing.T) {
	msgs := drain(t, Run(context.Background(), Request{}, DefaultConfig(), nil))

	require.Len(t, msgs, 2)
	assert.Equal(t, Progress{Value: 1}, msgs[0])
	done, ok := msgs[1].(Done)
	require.True(t, ok)
	assert.Empty(t, done.Nodes)
	assert.Empty(t, done.Links)
}

func TestRunStreamsOrderedProgressThenDone(t *testing.T) {
	req := chainRequest(12)
	msgs := drain(t, Run(context.Background(), req, DefaultConfig(), nil))

	require.NotEmpty(t, msgs)
	last := -1.0
	for _, m := range msgs[:len(msgs)-1] {
		p, ok := m.(Progress)
		require.True(t, ok, "only progress may precede the final message, got %T", m)
		assert.Greater(t, p.Value, last)
		assert.Less(t, p.Value, 1.0)
		last = p.Value
	}
	// 300 ticks reported every 3 ticks.
	assert.Len(t, msgs, 101)

	done, ok := msgs[len(msgs)-1].(Done)
	require.True(t, ok)
	require.Len(t, done.Nodes, len(req.Nodes))
	assert.Equal(t, req.Links, done.Links)
	for i, n := range done.Nodes {
		assert.Equal(t, req.Nodes[i].ID, n.ID)
		assert.False(t, math.IsNaN(n.X) || math.IsNaN(n.Y))
	}
}

func TestRunCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := Run(ctx, chainRequest(200), DefaultConfig(), nil)
	<-ch
	cancel()

	// The stream must close without a failure; a Done that raced the cancel
	// is acceptable.
	for _, m := range drain(t, ch) {
		_, failed := m.(Failed)
		assert.False(t, failed)
	}
}

func TestSimulationCentersAndSeparates(t *testing.T) {
	req := chainRequest(20)
	sim := NewSimulation(req, DefaultConfig())
	for i := 0; i < DefaultConfig().Iterations(); i++ {
		sim.Tick()
	}
	pos := sim.Positions()

	var sx, sy float64
	for _, p := range pos {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pos))
	assert.InDelta(t, GraphWidth/2, sx/n, 5)
	assert.InDelta(t, GraphHeight/2, sy/n, 5)

	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			d := math.Hypot(pos[i].X-pos[j].X, pos[i].Y-pos[j].Y)
			assert.Greater(t, d, 0.5, "nodes %d and %d collapsed", i, j)
		}
	}

	// Neighbours along the chain settle near the link distance.
	for i := 1; i < len(pos); i++ {
		d := math.Hypot(pos[i].X-pos[i-1].X, pos[i].Y-pos[i-1].Y)
		assert.Greater(t, d, 10.0)
		assert.Less(t, d, 80.0)
	}
}

func TestSimulationIsDeterministic(t *testing.T) {
	run := func() []NodeData {
		sim := NewSimulation(chainRequest(30), DefaultConfig())
		for i := 0; i < 100; i++ {
			sim.Tick()
		}
		return sim.Positions()
	}
	assert.Equal(t, run(), run())
}

func TestSimulationSeparatesCoincidentNodes(t *testing.T) {
	req := Request{
		GraphWidth: GraphWidth, GraphHeight: GraphHeight,
		Nodes: []NodeData{{ID: "a", X: 10, Y: 10}, {ID: "b", X: 10, Y: 10}, {ID: "c", X: 10, Y: 10}},
	}
	sim := NewSimulation(req, DefaultConfig())
	for i := 0; i < 50; i++ {
		sim.Tick()
	}
	pos := sim.Positions()
	assert.NotEqual(t, pos[0], pos[1])
	assert.NotEqual(t, pos[1], pos[2])
}

func TestWeightedLinksShortenRestLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WeightedLinks = true
	sim := NewSimulation(Request{}, cfg)

	assert.Equal(t, cfg.LinkDistance, sim.linkDistance(1))
	assert.Less(t, sim.linkDistance(5), sim.linkDistance(2))
}

func TestCollect(t *testing.T) {
	var seen []float64
	done, err := Collect(context.Background(), Run(context.Background(), chainRequest(5), DefaultConfig(), nil), func(p float64) {
		seen = append(seen, p)
	})
	require.NoError(t, err)
	assert.Len(t, done.Nodes, 5)
	assert.NotEmpty(t, seen)
}

func TestCollectFailed(t *testing.T) {
	ch := make(chan Message, 1)
	ch <- Failed{Err: assert.AnError}
	close(ch)

	_, err := Collect(context.Background(), ch, nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCollectWorkerExited(t *testing.T) {
	ch := make(chan Message)
	close(ch)

	_, err := Collect(context.Background(), ch, nil)
	assert.ErrorIs(t, err, ErrWorkerExited)
}
