// Package client is a typed Go client for the model service. It hides the
// envelope protocol behind methods mirroring the model interface, one per
// remote operation.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/coastalsim/longshore/bmi"
	"github.com/coastalsim/longshore/bmirpc"
	"github.com/coastalsim/longshore/internal/mapsafe"
)

// Client drives one remote model.
type Client struct {
	conn *grpc.ClientConn
	mc   bmirpc.ModelServiceClient
}

// Dial connects to a model service over an insecure channel, the
// conventional deployment of the service inside a container network.
func Dial(target string) (*Client, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", target, err)
	}
	return &Client{conn: conn, mc: bmirpc.NewModelServiceClient(conn)}, nil
}

// New wraps an existing client connection.
func New(cc grpc.ClientConnInterface) *Client {
	return &Client{mc: bmirpc.NewModelServiceClient(cc)}
}

// Close releases the connection, if the client owns one.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, op string, params map[string]any) (map[string]any, error) {
	in, err := bmirpc.EncodeRequest(op, params)
	if err != nil {
		return nil, err
	}
	out, err := c.mc.Invoke(ctx, in)
	if err != nil {
		return nil, err
	}
	return bmirpc.DecodeResult(out), nil
}

// Progress is the result of a stepping operation.
type Progress struct {
	// Time is the model clock after the step.
	Time float64

	// AtEnd reports that the model has reached the end of its time
	// horizon.
	AtEnd bool
}

func progressFrom(fields map[string]any) Progress {
	return Progress{
		Time:  mapsafe.Get(fields, "time", 0.0),
		AtEnd: mapsafe.Get(fields, "at_end", false),
	}
}

// Initialize loads the configuration file at path on the server; an empty
// path selects the model's defaults.
func (c *Client) Initialize(ctx context.Context, path string) error {
	params := map[string]any{}
	if path != "" {
		params["config"] = path
	}
	_, err := c.invoke(ctx, bmirpc.OpInitialize, params)
	return err
}

// Update advances the model by one time step.
func (c *Client) Update(ctx context.Context) (Progress, error) {
	fields, err := c.invoke(ctx, bmirpc.OpUpdate, nil)
	if err != nil {
		return Progress{}, err
	}
	return progressFrom(fields), nil
}

// UpdateUntil advances the model until its clock reaches t.
func (c *Client) UpdateUntil(ctx context.Context, t float64) (Progress, error) {
	fields, err := c.invoke(ctx, bmirpc.OpUpdateUntil, map[string]any{"time": t})
	if err != nil {
		return Progress{}, err
	}
	return progressFrom(fields), nil
}

// Finalize releases the remote model's state.
func (c *Client) Finalize(ctx context.Context) error {
	_, err := c.invoke(ctx, bmirpc.OpFinalize, nil)
	return err
}

// ComponentName reports the remote model's declared name.
func (c *Client) ComponentName(ctx context.Context) (string, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetComponentName, nil)
	if err != nil {
		return "", err
	}
	return mapsafe.Get(fields, "name", ""), nil
}

func (c *Client) varNames(ctx context.Context, op string) ([]string, error) {
	fields, err := c.invoke(ctx, op, nil)
	if err != nil {
		return nil, err
	}
	raw, _ := fields["names"].([]any)
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			names = append(names, s)
		}
	}
	return names, nil
}

// InputVarNames lists the variables the remote model accepts.
func (c *Client) InputVarNames(ctx context.Context) ([]string, error) {
	return c.varNames(ctx, bmirpc.OpGetInputVarNames)
}

// OutputVarNames lists the variables the remote model exposes.
func (c *Client) OutputVarNames(ctx context.Context) ([]string, error) {
	return c.varNames(ctx, bmirpc.OpGetOutputVarNames)
}

// VarGrid reports the grid a variable is defined on.
func (c *Client) VarGrid(ctx context.Context, name string) (int, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetVarGrid, map[string]any{"name": name})
	if err != nil {
		return 0, err
	}
	return mapsafe.Get(fields, "grid", 0), nil
}

// VarType reports a variable's element type.
func (c *Client) VarType(ctx context.Context, name string) (bmi.VarType, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetVarType, map[string]any{"name": name})
	if err != nil {
		return "", err
	}
	return bmi.VarType(mapsafe.Get(fields, "type", "")), nil
}

// VarUnits reports a variable's units.
func (c *Client) VarUnits(ctx context.Context, name string) (string, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetVarUnits, map[string]any{"name": name})
	if err != nil {
		return "", err
	}
	return mapsafe.Get(fields, "units", ""), nil
}

// VarItemSize reports the size in bytes of one element of a variable.
func (c *Client) VarItemSize(ctx context.Context, name string) (int, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetVarItemsize, map[string]any{"name": name})
	if err != nil {
		return 0, err
	}
	return mapsafe.Get(fields, "itemsize", 0), nil
}

// VarNBytes reports the total size in bytes of a variable.
func (c *Client) VarNBytes(ctx context.Context, name string) (int, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetVarNBytes, map[string]any{"name": name})
	if err != nil {
		return 0, err
	}
	return mapsafe.Get(fields, "nbytes", 0), nil
}

// VarLocation reports where on its grid a variable is defined.
func (c *Client) VarLocation(ctx context.Context, name string) (bmi.VarLocation, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetVarLocation, map[string]any{"name": name})
	if err != nil {
		return "", err
	}
	return bmi.VarLocation(mapsafe.Get(fields, "location", "")), nil
}

func (c *Client) timeOp(ctx context.Context, op, field string) (float64, error) {
	fields, err := c.invoke(ctx, op, nil)
	if err != nil {
		return 0, err
	}
	return mapsafe.Get(fields, field, 0.0), nil
}

// StartTime reports the model clock value at the start of the run.
func (c *Client) StartTime(ctx context.Context) (float64, error) {
	return c.timeOp(ctx, bmirpc.OpGetStartTime, "time")
}

// EndTime reports the model clock value the run ends at.
func (c *Client) EndTime(ctx context.Context) (float64, error) {
	return c.timeOp(ctx, bmirpc.OpGetEndTime, "time")
}

// CurrentTime reports the current model clock value.
func (c *Client) CurrentTime(ctx context.Context) (float64, error) {
	return c.timeOp(ctx, bmirpc.OpGetCurrentTime, "time")
}

// TimeStep reports the nominal increment of one update.
func (c *Client) TimeStep(ctx context.Context) (float64, error) {
	return c.timeOp(ctx, bmirpc.OpGetTimeStep, "time_step")
}

// TimeUnits reports the units of the model clock.
func (c *Client) TimeUnits(ctx context.Context) (string, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetTimeUnits, nil)
	if err != nil {
		return "", err
	}
	return mapsafe.Get(fields, "units", ""), nil
}

// Value retrieves the current values of a variable.
func (c *Client) Value(ctx context.Context, name string) ([]float64, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetValue, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	values, _ := mapsafe.Floats(fields, "values")
	return values, nil
}

// ValueAtIndices retrieves the values at the given flat grid indices.
func (c *Client) ValueAtIndices(ctx context.Context, name string, indices []int) ([]float64, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetValueAtIndices, map[string]any{
		"name":    name,
		"indices": indices,
	})
	if err != nil {
		return nil, err
	}
	values, _ := mapsafe.Floats(fields, "values")
	return values, nil
}

// SetValue replaces the values of a variable.
func (c *Client) SetValue(ctx context.Context, name string, values []float64) error {
	_, err := c.invoke(ctx, bmirpc.OpSetValue, map[string]any{
		"name":   name,
		"values": values,
	})
	return err
}

// SetValueAtIndices writes values to the given flat grid indices.
func (c *Client) SetValueAtIndices(ctx context.Context, name string, indices []int, values []float64) error {
	_, err := c.invoke(ctx, bmirpc.OpSetValueAtIndices, map[string]any{
		"name":    name,
		"indices": indices,
		"values":  values,
	})
	return err
}

// GridType reports the topology of a grid.
func (c *Client) GridType(ctx context.Context, grid int) (bmi.GridType, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetGridType, map[string]any{"grid": grid})
	if err != nil {
		return "", err
	}
	return bmi.GridType(mapsafe.Get(fields, "type", "")), nil
}

// GridRank reports the number of dimensions of a grid.
func (c *Client) GridRank(ctx context.Context, grid int) (int, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetGridRank, map[string]any{"grid": grid})
	if err != nil {
		return 0, err
	}
	return mapsafe.Get(fields, "rank", 0), nil
}

// GridSize reports the total number of elements of a grid.
func (c *Client) GridSize(ctx context.Context, grid int) (int, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetGridSize, map[string]any{"grid": grid})
	if err != nil {
		return 0, err
	}
	return mapsafe.Get(fields, "size", 0), nil
}

// GridShape reports the extent of each grid dimension.
func (c *Client) GridShape(ctx context.Context, grid int) ([]int, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetGridShape, map[string]any{"grid": grid})
	if err != nil {
		return nil, err
	}
	shape, _ := mapsafe.Ints(fields, "shape")
	return shape, nil
}

// GridSpacing reports the node spacing along each grid dimension.
func (c *Client) GridSpacing(ctx context.Context, grid int) ([]float64, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetGridSpacing, map[string]any{"grid": grid})
	if err != nil {
		return nil, err
	}
	spacing, _ := mapsafe.Floats(fields, "spacing")
	return spacing, nil
}

// GridOrigin reports the coordinates of the lower-left grid corner.
func (c *Client) GridOrigin(ctx context.Context, grid int) ([]float64, error) {
	fields, err := c.invoke(ctx, bmirpc.OpGetGridOrigin, map[string]any{"grid": grid})
	if err != nil {
		return nil, err
	}
	origin, _ := mapsafe.Floats(fields, "origin")
	return origin, nil
}

// RunOptions configure a streamed batch run.
type RunOptions struct {
	// Until is the model clock value to stop at; zero runs to the end of
	// the model's time horizon.
	Until float64

	// Interval is the number of steps between progress envelopes; zero
	// reports every step.
	Interval int
}

// RunStream yields the progress of a streamed batch run.
type RunStream struct {
	stream grpc.ServerStreamingClient[structpb.Struct]
}

// Recv returns the next progress report. It returns io.EOF after the
// final report.
func (rs *RunStream) Recv() (Progress, error) {
	out, err := rs.stream.Recv()
	if err != nil {
		return Progress{}, err
	}
	return progressFrom(bmirpc.DecodeResult(out)), nil
}

// Run starts a streamed batch run stepping the remote model. Cancelling
// ctx stops the run.
func (c *Client) Run(ctx context.Context, opts RunOptions) (*RunStream, error) {
	params := map[string]any{}
	if opts.Until > 0 {
		params["until"] = opts.Until
	}
	if opts.Interval > 0 {
		params["interval"] = opts.Interval
	}

	in, err := bmirpc.EncodeRequest("run", params)
	if err != nil {
		return nil, err
	}
	stream, err := c.mc.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	return &RunStream{stream: stream}, nil
}
