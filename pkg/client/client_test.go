package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/colonies/internal/testutil/fakeserver"
	"github.com/danmuck/colonies/internal/testutil/testlog"
	"github.com/danmuck/colonies/pkg/core"
	"github.com/danmuck/colonies/pkg/crypto"
	"github.com/danmuck/colonies/pkg/pubsub"
	"github.com/danmuck/colonies/pkg/rpc"
)

const (
	serverPrvKey   = "fcc79953d8a751bf41db661592dc34d30004b1a651ffa0725b03ac227641499d"
	colonyPrvKey   = "ba949fa134981372d6da62b6a56f336ab4d843b22c02a4257dcf7d0d73097514"
	executorPrvKey = "ddf7f7791208083b6a9ed975a72684f6406a269cfa36f1b1c32045c0a71fff05"
	colonyName     = "dev"
)

func newTestClient(t *testing.T, srv *fakeserver.Server) *Client {
	t.Helper()
	c, err := New(srv.Config())
	require.NoError(t, err)
	return c
}

func payload(t *testing.T, srv *fakeserver.Server, payloadType string) map[string]any {
	t.Helper()
	req, ok := srv.Last(payloadType)
	require.True(t, ok, "no %s request recorded", payloadType)
	var m map[string]any
	require.NoError(t, json.Unmarshal(req.JSON, &m))
	return m
}

func TestAddColonySignedByServerKey(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.Handle(AddColonyPayloadType, func(req rpc.Verified) (any, error) {
		msg, err := fakeserver.Bind[ColonyMsg](req)
		if err != nil {
			return nil, err
		}
		return msg.Colony, nil
	})
	c := newTestClient(t, srv)

	colonyID, err := crypto.GenerateID(colonyPrvKey)
	require.NoError(t, err)
	added, err := c.AddColony(context.Background(), core.NewColony(colonyID, colonyName), serverPrvKey)
	require.NoError(t, err)
	assert.Equal(t, colonyID, added.ColonyID)
	assert.Equal(t, colonyName, added.Name)

	serverID, err := crypto.GenerateID(serverPrvKey)
	require.NoError(t, err)
	req, ok := srv.Last(AddColonyPayloadType)
	require.True(t, ok)
	assert.Equal(t, serverID, req.Identity)
}

func TestListsDecodeNullAsEmpty(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	nothing := func(rpc.Verified) (any, error) { return nil, nil }
	for _, pt := range []string{
		GetColoniesPayloadType,
		GetExecutorsPayloadType,
		GetProcessesPayloadType,
		GetProcessGraphsPayloadType,
		GetLogsPayloadType,
		ChannelReadPayloadType,
		GetFunctionsPayloadType,
		GetBlueprintDefinitionsPayloadType,
		GetBlueprintsPayloadType,
	} {
		srv.Handle(pt, nothing)
	}
	c := newTestClient(t, srv)
	ctx := context.Background()

	colonies, err := c.GetColonies(ctx, serverPrvKey)
	require.NoError(t, err)
	assert.NotNil(t, colonies)
	assert.Empty(t, colonies)

	executors, err := c.GetExecutors(ctx, colonyName, colonyPrvKey)
	require.NoError(t, err)
	assert.NotNil(t, executors)

	processes, err := c.GetProcesses(ctx, colonyName, core.WAITING, 10, executorPrvKey)
	require.NoError(t, err)
	assert.NotNil(t, processes)

	graphs, err := c.GetProcessGraphs(ctx, colonyName, core.RUNNING, 10, executorPrvKey)
	require.NoError(t, err)
	assert.NotNil(t, graphs)

	logs, err := c.GetLogs(ctx, LogQuery{ColonyName: colonyName, ProcessID: "p1", Count: 5}, executorPrvKey)
	require.NoError(t, err)
	assert.NotNil(t, logs)

	entries, err := c.ChannelRead(ctx, "p1", "chat", 0, 10, executorPrvKey)
	require.NoError(t, err)
	assert.NotNil(t, entries)

	funcs, err := c.GetFunctions(ctx, colonyName, executorPrvKey)
	require.NoError(t, err)
	assert.NotNil(t, funcs)

	defs, err := c.GetBlueprintDefinitions(ctx, colonyName, colonyPrvKey)
	require.NoError(t, err)
	assert.NotNil(t, defs)

	bps, err := c.GetBlueprints(ctx, colonyName, "", "", colonyPrvKey)
	require.NoError(t, err)
	assert.NotNil(t, bps)
}

func TestApplicationErrorCarriesServerMessage(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.Handle(GetProcessPayloadType, func(rpc.Verified) (any, error) {
		return nil, fakeserver.Reject(http.StatusNotFound, "process not found")
	})
	c := newTestClient(t, srv)

	_, err := c.GetProcess(context.Background(), "missing", executorPrvKey)
	require.Error(t, err)
	assert.True(t, rpc.IsApplicationError(err))
	var rpcErr *rpc.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, http.StatusNotFound, rpcErr.Status)
	assert.Equal(t, "process not found", rpcErr.Message)
}

func TestUnsupportedOperationIsApplicationError(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	c := newTestClient(t, srv)

	err := c.RemoveColony(context.Background(), colonyName, serverPrvKey)
	require.Error(t, err)
	assert.True(t, rpc.IsApplicationError(err))
	assert.False(t, rpc.IsConnectionError(err))
}

func TestAssignOutlivesRequestTimeout(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.Handle(AssignProcessPayloadType, func(req rpc.Verified) (any, error) {
		time.Sleep(400 * time.Millisecond)
		p := core.Process{ProcessID: "p1", State: core.RUNNING}
		p.Spec = core.NewFunctionSpec("echo", "cli", colonyName)
		return p, nil
	})
	cfg := srv.Config()
	cfg.RequestTimeout = 200 * time.Millisecond
	c, err := New(cfg)
	require.NoError(t, err)

	p, err := c.Assign(context.Background(), colonyName, time.Second, executorPrvKey)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ProcessID)
	assert.Equal(t, "echo", p.Spec.FuncName)

	m := payload(t, srv, AssignProcessPayloadType)
	assert.Equal(t, float64(1), m["timeout"])
	assert.Equal(t, colonyName, m["colonyname"])
}

func TestGetProcessHonorsRequestTimeout(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.Handle(GetProcessPayloadType, func(rpc.Verified) (any, error) {
		time.Sleep(400 * time.Millisecond)
		return core.Process{}, nil
	})
	cfg := srv.Config()
	cfg.RequestTimeout = 100 * time.Millisecond
	c, err := New(cfg)
	require.NoError(t, err)

	_, err = c.GetProcess(context.Background(), "p1", executorPrvKey)
	require.Error(t, err)
	assert.True(t, rpc.IsConnectionError(err), "err=%v", err)
}

func TestMessageFields(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	tests := []struct {
		name        string
		payloadType string
		call        func() error
		want        map[string]any
	}{
		{
			name:        "approve executor",
			payloadType: ApproveExecutorPayloadType,
			call: func() error {
				return c.ApproveExecutor(ctx, colonyName, "worker-1", colonyPrvKey)
			},
			want: map[string]any{"colonyname": colonyName, "executorname": "worker-1"},
		},
		{
			name:        "close with output",
			payloadType: CloseSuccessfulPayloadType,
			call: func() error {
				return c.CloseWithOutput(ctx, "p1", []any{"hello"}, executorPrvKey)
			},
			want: map[string]any{"processid": "p1", "out": []any{"hello"}},
		},
		{
			name:        "fail",
			payloadType: CloseFailedPayloadType,
			call: func() error {
				return c.Fail(ctx, "p2", []string{"boom"}, executorPrvKey)
			},
			want: map[string]any{"processid": "p2", "errors": []any{"boom"}},
		},
		{
			name:        "set empty output",
			payloadType: SetOutputPayloadType,
			call: func() error {
				return c.SetOutput(ctx, "p3", nil, executorPrvKey)
			},
			want: map[string]any{"processid": "p3", "out": []any{}},
		},
		{
			name:        "remove all processes",
			payloadType: RemoveAllProcessesPayloadType,
			call: func() error {
				return c.RemoveAllProcesses(ctx, colonyName, core.Unlimited, colonyPrvKey)
			},
			want: map[string]any{"colonyname": colonyName, "state": float64(core.Unlimited)},
		},
		{
			name:        "add log",
			payloadType: AddLogPayloadType,
			call: func() error {
				return c.AddLog(ctx, "p1", "step 1", executorPrvKey)
			},
			want: map[string]any{"processid": "p1", "message": "step 1"},
		},
		{
			name:        "channel append",
			payloadType: ChannelAppendPayloadType,
			call: func() error {
				return c.ChannelAppend(ctx, "p1", "chat", "hi", "data", 4, executorPrvKey)
			},
			want: map[string]any{"processid": "p1", "name": "chat", "data": "hi", "type": "data", "inreplyto": float64(4)},
		},
		{
			name:        "remove function",
			payloadType: RemoveFunctionPayloadType,
			call: func() error {
				return c.RemoveFunction(ctx, "f1", executorPrvKey)
			},
			want: map[string]any{"functionid": "f1"},
		},
		{
			name:        "update blueprint status",
			payloadType: UpdateBlueprintStatusPayloadType,
			call: func() error {
				return c.UpdateBlueprintStatus(ctx, colonyName, "web", map[string]any{"ready": true}, executorPrvKey)
			},
			want: map[string]any{"colonyname": colonyName, "name": "web", "status": map[string]any{"ready": true}},
		},
		{
			name:        "remove process graph",
			payloadType: RemoveProcessGraphPayloadType,
			call: func() error {
				return c.RemoveProcessGraph(ctx, "g1", executorPrvKey)
			},
			want: map[string]any{"processgraphid": "g1"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv.Handle(tc.payloadType, func(rpc.Verified) (any, error) { return nil, nil })
			require.NoError(t, tc.call())
			m := payload(t, srv, tc.payloadType)
			assert.Equal(t, tc.payloadType, m["msgtype"])
			for k, v := range tc.want {
				assert.Equal(t, v, m[k], "field %s", k)
			}
		})
	}
}

func TestGetLogsSinceIsUnixNanos(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.Handle(GetLogsPayloadType, func(rpc.Verified) (any, error) {
		return []core.Log{{ProcessID: "p1", Message: "hello"}}, nil
	})
	c := newTestClient(t, srv)

	since := time.Unix(1700000000, 0)
	logs, err := c.GetLogs(context.Background(), LogQuery{ColonyName: colonyName, ExecutorName: "w1", Count: 3, Since: since}, executorPrvKey)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "hello", logs[0].Message)

	req, ok := srv.Last(GetLogsPayloadType)
	require.True(t, ok)
	msg, err := fakeserver.Bind[GetLogsMsg](req)
	require.NoError(t, err)
	assert.Equal(t, since.UnixNano(), msg.Since)
	assert.Equal(t, "w1", msg.ExecutorName)
	assert.Empty(t, msg.ProcessID)
}

func TestAddAttributeTargetsProcess(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.Handle(AddAttributePayloadType, func(req rpc.Verified) (any, error) {
		msg, err := fakeserver.Bind[AttributeMsg](req)
		if err != nil {
			return nil, err
		}
		attr := msg.Attribute
		attr.AttributeID = "attr-1"
		return attr, nil
	})
	c := newTestClient(t, srv)

	attr, err := c.AddAttribute(context.Background(), core.NewAttribute(colonyName, "p1", "result", "42"), executorPrvKey)
	require.NoError(t, err)
	assert.Equal(t, "attr-1", attr.AttributeID)
	assert.Equal(t, core.OUT, attr.AttributeType)

	sent := payload(t, srv, AddAttributePayloadType)
	inner, ok := sent["attribute"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", inner["targetid"])
	assert.Equal(t, colonyName, inner["targetcolonyname"])
	assert.Equal(t, "result", inner["key"])
}

func TestSubmitWorkflowAndBlueprints(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.Handle(SubmitWorkflowSpecPayloadType, func(req rpc.Verified) (any, error) {
		msg, err := fakeserver.Bind[WorkflowSpecMsg](req)
		if err != nil {
			return nil, err
		}
		return core.ProcessGraph{ProcessGraphID: "g1", ColonyName: msg.Spec.ColonyName, ProcessIDs: []string{"a", "b"}}, nil
	})
	srv.Handle(UpdateBlueprintPayloadType, func(req rpc.Verified) (any, error) {
		msg, err := fakeserver.Bind[BlueprintMsg](req)
		if err != nil {
			return nil, err
		}
		if !msg.ForceGeneration {
			return nil, fakeserver.Reject(http.StatusBadRequest, "force expected")
		}
		msg.Blueprint.Generation++
		return msg.Blueprint, nil
	})
	srv.Handle(ReconcileBlueprintPayloadType, func(req rpc.Verified) (any, error) {
		return core.Process{ProcessID: "reconcile-1"}, nil
	})
	c := newTestClient(t, srv)
	ctx := context.Background()

	wf := core.NewWorkflowSpec(colonyName,
		core.NewFunctionSpec("gen", "cli", colonyName),
		core.NewFunctionSpec("sum", "cli", colonyName),
	)
	graph, err := c.SubmitWorkflow(ctx, wf, executorPrvKey)
	require.NoError(t, err)
	assert.Equal(t, "g1", graph.ProcessGraphID)
	assert.Equal(t, []string{"a", "b"}, graph.ProcessIDs)

	bp := core.NewBlueprint("Deployment", "web", colonyName, "reconciler")
	updated, err := c.UpdateBlueprint(ctx, bp, true, executorPrvKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Generation)
	assert.False(t, updated.Reconciled())

	p, err := c.ReconcileBlueprint(ctx, colonyName, "web", true, executorPrvKey)
	require.NoError(t, err)
	assert.Equal(t, "reconcile-1", p.ProcessID)
	m := payload(t, srv, ReconcileBlueprintPayloadType)
	assert.Equal(t, true, m["force"])
}

func TestSubscribeProcessesStopsAtFirstBatch(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(SubscribeProcessesPayloadType, func(_ rpc.Verified, stream *fakeserver.Stream) {
		_ = stream.Send(core.Process{ProcessID: "p1", State: core.SUCCESS})
		_ = stream.Send(core.Process{ProcessID: "p2", State: core.SUCCESS})
		stream.Wait(2 * time.Second)
	})
	c := newTestClient(t, srv)

	res, err := c.SubscribeProcesses(context.Background(), colonyName, "cli", core.SUCCESS, 2*time.Second, executorPrvKey)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "p1", res.Records[0].ProcessID)
	assert.Equal(t, pubsub.TerminationDrained, res.Termination)

	m := payload(t, srv, SubscribeProcessesPayloadType)
	assert.Equal(t, "cli", m["executortype"])
	assert.Equal(t, float64(2), m["timeout"])
}

func TestSubscribeProcessTimesOutWithoutError(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(SubscribeProcessPayloadType, func(_ rpc.Verified, stream *fakeserver.Stream) {
		stream.Wait(5 * time.Second)
	})
	c := newTestClient(t, srv)

	p := core.Process{ProcessID: "p9", Spec: core.NewFunctionSpec("echo", "cli", colonyName)}
	start := time.Now()
	res, err := c.SubscribeProcess(context.Background(), p, core.SUCCESS, time.Second, executorPrvKey)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, pubsub.TerminationTimedOut, res.Termination)
	assert.Less(t, time.Since(start), 4*time.Second)

	m := payload(t, srv, SubscribeProcessPayloadType)
	assert.Equal(t, "p9", m["processid"])
	assert.Equal(t, colonyName, m["colonyname"])
}

func TestSubscribeChannelDeliversUntilClose(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(SubscribeChannelPayloadType, func(_ rpc.Verified, stream *fakeserver.Stream) {
		_ = stream.Send([]core.ChannelEntry{{Sequence: 1, Data: "a"}, {Sequence: 2, Data: "b"}})
		_ = stream.Send([]core.ChannelEntry{{Sequence: 3, Data: "c"}})
		_ = stream.Close()
		stream.Wait(2 * time.Second)
	})
	c := newTestClient(t, srv)

	var batches int
	res, err := c.SubscribeChannel(context.Background(), "p1", "chat", 0, 2*time.Second, executorPrvKey,
		func(batch []core.ChannelEntry) bool {
			batches++
			return true
		})
	require.NoError(t, err)
	assert.Equal(t, 2, batches)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "c", res.Records[2].Data)
	assert.Equal(t, pubsub.TerminationClosed, res.Termination)
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{in: 0, want: 0},
		{in: -time.Second, want: 0},
		{in: 500 * time.Millisecond, want: 1},
		{in: 2 * time.Second, want: 2},
		{in: 2*time.Second + time.Millisecond, want: 3},
	}
	for _, tc := range tests {
		if got := seconds(tc.in); got != tc.want {
			t.Fatalf("seconds(%v)=%d want %d", tc.in, got, tc.want)
		}
	}
}
