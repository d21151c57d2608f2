// Package bmi defines the uniform interface a simulation model must satisfy
// to be served by this process, together with the factory registry used to
// bind concrete models at startup.
package bmi

import "context"

// MaxComponentName is the longest component name a model may report.
const MaxComponentName = 2048

// VarType identifies the element type of a model variable.
type VarType string

const (
	// VarTypeFloat64 is the element type of all variables exposed by the
	// models shipped with this module.
	VarTypeFloat64 VarType = "float64"
)

// VarLocation identifies where on its grid a variable is defined.
type VarLocation string

const (
	VarLocationNode VarLocation = "node"
	VarLocationEdge VarLocation = "edge"
	VarLocationFace VarLocation = "face"
)

// GridType identifies the topology of a model grid.
type GridType string

const (
	// GridTypeScalar is the degenerate rank-zero grid scalar variables
	// live on.
	GridTypeScalar GridType = "none"

	// GridTypeUniformRectilinear is a rectangular grid with constant
	// spacing along each dimension.
	GridTypeUniformRectilinear GridType = "uniform_rectilinear"

	// GridTypeUnstructured is a mesh of nodes, edges and faces. Models
	// using it implement the Mesher interface as well.
	GridTypeUnstructured GridType = "unstructured"
)

// Model is the full callback surface a served model provides. One concrete
// type implements it per model; the server dispatches every remote operation
// to exactly one of these methods.
//
// Variable values travel as float64 slices. Buffers passed to Value and
// ValueAtIndices are allocated by the caller, sized from GridSize or
// VarNBytes, and filled by the model.
type Model interface {
	// Initialize loads the configuration file at path and brings the model
	// into its start state. An empty path selects built-in defaults.
	Initialize(ctx context.Context, path string) error

	// Update advances the model by one time step. Once the model clock has
	// reached EndTime, Update returns ErrEndOfModelTime and leaves the
	// state untouched.
	Update() error

	// UpdateUntil advances the model until its clock reaches t, which may
	// imply a fractional final step.
	UpdateUntil(t float64) error

	// Finalize releases model state. The model accepts no further
	// operations afterwards.
	Finalize() error

	// ComponentName reports the model's declared name. It is available as
	// soon as the model is constructed, before Initialize.
	ComponentName() string

	// InputVarNames lists the variables the model accepts through SetValue.
	InputVarNames() []string

	// OutputVarNames lists the variables the model exposes through Value.
	OutputVarNames() []string

	// VarGrid reports the identifier of the grid a variable is defined on.
	VarGrid(name string) (int, error)
	// VarType reports a variable's element type.
	VarType(name string) (VarType, error)
	// VarUnits reports a variable's units in UDUNITS notation.
	VarUnits(name string) (string, error)
	// VarItemSize reports the size in bytes of one element of a variable.
	VarItemSize(name string) (int, error)
	// VarNBytes reports the total size in bytes of a variable.
	VarNBytes(name string) (int, error)
	// VarLocation reports where on its grid a variable is defined.
	VarLocation(name string) (VarLocation, error)

	// StartTime reports the model clock value at the start of the run.
	StartTime() float64
	// EndTime reports the model clock value the run ends at.
	EndTime() float64
	// CurrentTime reports the current model clock value.
	CurrentTime() float64
	// TimeStep reports the nominal increment of one Update call.
	TimeStep() float64
	// TimeUnits reports the units of the model clock in UDUNITS notation.
	TimeUnits() string

	// Value copies the current values of a variable into dst, whose length
	// must equal the size of the variable's grid.
	Value(name string, dst []float64) error
	// ValueAtIndices copies the values at the given flat grid indices into
	// dst; dst and indices must have equal length.
	ValueAtIndices(name string, dst []float64, indices []int) error
	// SetValue replaces the values of a variable with src, whose length
	// must equal the size of the variable's grid.
	SetValue(name string, src []float64) error
	// SetValueAtIndices writes src to the given flat grid indices.
	SetValueAtIndices(name string, indices []int, src []float64) error

	// GridType reports the topology of a grid.
	GridType(grid int) (GridType, error)
	// GridRank reports the number of dimensions of a grid.
	GridRank(grid int) (int, error)
	// GridSize reports the total number of elements of a grid.
	GridSize(grid int) (int, error)
	// GridShape reports the extent of each grid dimension, slowest varying
	// first.
	GridShape(grid int) ([]int, error)
	// GridSpacing reports the distance between adjacent grid nodes along
	// each dimension.
	GridSpacing(grid int) ([]float64, error)
	// GridOrigin reports the coordinates of the lower-left grid corner.
	GridOrigin(grid int) ([]float64, error)
}

// Mesher is an optional interface for models with unstructured grids. The
// server answers mesh operations for models that do not implement it with a
// defined "unsupported" result instead of dispatching.
type Mesher interface {
	Model

	// GridX reports the node x-coordinates of a grid.
	GridX(grid int) ([]float64, error)
	// GridY reports the node y-coordinates of a grid.
	GridY(grid int) ([]float64, error)
	// GridZ reports the node z-coordinates of a grid.
	GridZ(grid int) ([]float64, error)

	// GridNodeCount reports the number of mesh nodes.
	GridNodeCount(grid int) (int, error)
	// GridEdgeCount reports the number of mesh edges.
	GridEdgeCount(grid int) (int, error)
	// GridFaceCount reports the number of mesh faces.
	GridFaceCount(grid int) (int, error)

	// GridEdgeNodes reports the node pairs of every mesh edge.
	GridEdgeNodes(grid int) ([]int, error)
	// GridFaceEdges reports the edges bounding every mesh face.
	GridFaceEdges(grid int) ([]int, error)
	// GridFaceNodes reports the nodes bounding every mesh face.
	GridFaceNodes(grid int) ([]int, error)
	// GridNodesPerFace reports the number of nodes of every mesh face.
	GridNodesPerFace(grid int) ([]int, error)
}

// Factory constructs a fresh, uninitialized model instance.
type Factory func() Model
