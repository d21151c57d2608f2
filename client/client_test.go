package client_test

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/coastalsim/longshore/bmi"
	"github.com/coastalsim/longshore/bmirpc"
	"github.com/coastalsim/longshore/client"
	"github.com/coastalsim/longshore/internal/cem"
	"github.com/coastalsim/longshore/server"
)

// startService serves a fresh model over an in-memory connection and
// returns a client against it.
func startService(t *testing.T) *client.Client {
	t.Helper()

	svc, err := server.NewService(cem.New())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	g := grpc.NewServer()
	bmirpc.RegisterModelServiceServer(g, svc)

	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return client.New(conn)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestClient_ComponentNameBeforeInitialize(t *testing.T) {
	c := startService(t)
	ctx := context.Background()

	name, err := c.ComponentName(ctx)
	require.NoError(t, err)
	assert.Equal(t, cem.ComponentName, name)
}

func TestClient_DriverSession(t *testing.T) {
	c := startService(t)
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, ""))

	inputs, err := c.InputVarNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, inputs, cem.VarWaveHeight)
	assert.Contains(t, inputs, cem.VarBedload)

	outputs, err := c.OutputVarNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, outputs, cem.VarWaterDepth)

	grid, err := c.VarGrid(ctx, cem.VarWaterDepth)
	require.NoError(t, err)
	assert.Equal(t, 0, grid)

	typ, err := c.GridType(ctx, grid)
	require.NoError(t, err)
	assert.Equal(t, bmi.GridTypeUniformRectilinear, typ)

	rank, err := c.GridRank(ctx, grid)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	shape, err := c.GridShape(ctx, grid)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 200}, shape)

	spacing, err := c.GridSpacing(ctx, grid)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 1000}, spacing)

	units, err := c.VarUnits(ctx, cem.VarWaterDepth)
	require.NoError(t, err)
	assert.Equal(t, "m", units)

	timeUnits, err := c.TimeUnits(ctx)
	require.NoError(t, err)
	assert.Equal(t, "d", timeUnits)

	start, err := c.StartTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, start)

	end, err := c.EndTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3650.0, end)

	require.NoError(t, c.SetValue(ctx, cem.VarWaveHeight, []float64{2.5}))

	progress, err := c.Update(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, progress.Time)
	assert.False(t, progress.AtEnd)

	depth, err := c.Value(ctx, cem.VarWaterDepth)
	require.NoError(t, err)
	assert.Len(t, depth, 10000)

	now, err := c.CurrentTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, now)

	require.NoError(t, c.Finalize(ctx))
}

func TestClient_UpdateLoopUntilEndOfRun(t *testing.T) {
	c := startService(t)
	ctx := context.Background()

	path := writeConfig(t, "run:\n  time_step: 1\n  duration: 4\n")
	require.NoError(t, c.Initialize(ctx, path))

	steps := 0
	for {
		progress, err := c.Update(ctx)
		require.NoError(t, err)
		if progress.AtEnd {
			assert.Equal(t, 4.0, progress.Time)
			break
		}
		steps++
		require.Less(t, steps, 100, "model never reported at_end")
	}
	assert.Equal(t, 4, steps)
}

func TestClient_ValueAtIndicesRoundTrip(t *testing.T) {
	c := startService(t)
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, ""))

	require.NoError(t, c.SetValueAtIndices(ctx, cem.VarBedload, []int{5, 6}, []float64{1.5, 2.5}))

	got, err := c.ValueAtIndices(ctx, cem.VarBedload, []int{5, 6, 7})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5, 0}, got)
}

func TestClient_ErrorsCarryStatusCodes(t *testing.T) {
	c := startService(t)
	ctx := context.Background()

	_, err := c.Update(ctx)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	require.NoError(t, c.Initialize(ctx, ""))

	_, err = c.Value(ctx, "no_such__variable")
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = c.SetValue(ctx, cem.VarWaveHeight, []float64{1, 2, 3})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestClient_RunStreamToEnd(t *testing.T) {
	c := startService(t)
	ctx := context.Background()

	path := writeConfig(t, "run:\n  time_step: 1\n  duration: 5\n")
	require.NoError(t, c.Initialize(ctx, path))

	stream, err := c.Run(ctx, client.RunOptions{})
	require.NoError(t, err)

	var last client.Progress
	reports := 0
	for {
		progress, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		last = progress
		reports++
	}

	assert.Equal(t, 5, reports)
	assert.Equal(t, 5.0, last.Time)
	assert.True(t, last.AtEnd)
}

func TestClient_RunStreamUntil(t *testing.T) {
	c := startService(t)
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, ""))

	stream, err := c.Run(ctx, client.RunOptions{Until: 3, Interval: 10})
	require.NoError(t, err)

	progress, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, 3.0, progress.Time)
	assert.False(t, progress.AtEnd)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestClient_RunStreamCancelled(t *testing.T) {
	c := startService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Initialize(context.Background(), ""))

	stream, err := c.Run(ctx, client.RunOptions{})
	require.NoError(t, err)

	_, err = stream.Recv()
	require.NoError(t, err)

	cancel()

	deadline := time.After(5 * time.Second)
	for {
		if _, err = stream.Recv(); err != nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("stream did not stop after cancellation")
		default:
		}
	}
	assert.Equal(t, codes.Canceled, status.Code(err))
}
