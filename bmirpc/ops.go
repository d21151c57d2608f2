package bmirpc

// Operation names accepted in the "op" field of a request envelope. The
// names follow the BMI 2.0 function names so existing model drivers map
// onto the wire surface one to one.
const (
	OpInitialize  = "initialize"
	OpUpdate      = "update"
	OpUpdateUntil = "update_until"
	OpFinalize    = "finalize"

	OpGetComponentName   = "get_component_name"
	OpGetInputItemCount  = "get_input_item_count"
	OpGetOutputItemCount = "get_output_item_count"
	OpGetInputVarNames   = "get_input_var_names"
	OpGetOutputVarNames  = "get_output_var_names"

	OpGetVarGrid     = "get_var_grid"
	OpGetVarType     = "get_var_type"
	OpGetVarUnits    = "get_var_units"
	OpGetVarItemsize = "get_var_itemsize"
	OpGetVarNBytes   = "get_var_nbytes"
	OpGetVarLocation = "get_var_location"

	OpGetCurrentTime = "get_current_time"
	OpGetStartTime   = "get_start_time"
	OpGetEndTime     = "get_end_time"
	OpGetTimeUnits   = "get_time_units"
	OpGetTimeStep    = "get_time_step"

	OpGetValue          = "get_value"
	OpGetValuePtr       = "get_value_ptr"
	OpGetValueAtIndices = "get_value_at_indices"
	OpSetValue          = "set_value"
	OpSetValueAtIndices = "set_value_at_indices"

	OpGetGridRank    = "get_grid_rank"
	OpGetGridSize    = "get_grid_size"
	OpGetGridType    = "get_grid_type"
	OpGetGridShape   = "get_grid_shape"
	OpGetGridSpacing = "get_grid_spacing"
	OpGetGridOrigin  = "get_grid_origin"

	OpGetGridX = "get_grid_x"
	OpGetGridY = "get_grid_y"
	OpGetGridZ = "get_grid_z"

	OpGetGridNodeCount    = "get_grid_node_count"
	OpGetGridEdgeCount    = "get_grid_edge_count"
	OpGetGridFaceCount    = "get_grid_face_count"
	OpGetGridEdgeNodes    = "get_grid_edge_nodes"
	OpGetGridFaceEdges    = "get_grid_face_edges"
	OpGetGridFaceNodes    = "get_grid_face_nodes"
	OpGetGridNodesPerFace = "get_grid_nodes_per_face"
)

// Ops lists every operation name the service dispatches. The server builds
// its handler table from this list and refuses to start if any entry is
// left unbound.
var Ops = []string{
	OpInitialize, OpUpdate, OpUpdateUntil, OpFinalize,
	OpGetComponentName,
	OpGetInputItemCount, OpGetOutputItemCount,
	OpGetInputVarNames, OpGetOutputVarNames,
	OpGetVarGrid, OpGetVarType, OpGetVarUnits,
	OpGetVarItemsize, OpGetVarNBytes, OpGetVarLocation,
	OpGetCurrentTime, OpGetStartTime, OpGetEndTime,
	OpGetTimeUnits, OpGetTimeStep,
	OpGetValue, OpGetValuePtr, OpGetValueAtIndices,
	OpSetValue, OpSetValueAtIndices,
	OpGetGridRank, OpGetGridSize, OpGetGridType,
	OpGetGridShape, OpGetGridSpacing, OpGetGridOrigin,
	OpGetGridX, OpGetGridY, OpGetGridZ,
	OpGetGridNodeCount, OpGetGridEdgeCount, OpGetGridFaceCount,
	OpGetGridEdgeNodes, OpGetGridFaceEdges, OpGetGridFaceNodes,
	OpGetGridNodesPerFace,
}
