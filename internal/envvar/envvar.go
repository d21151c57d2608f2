package envvar

const (
	// LongshoreEnv is the environment variable used to determine the environment
	LongshoreEnv = "LONGSHORE_ENV"

	// LongshoreListen is the environment variable used to determine the gRPC listen address
	LongshoreListen = "LONGSHORE_LISTEN"

	// LongshoreMetricsListen is the environment variable used to determine the metrics listen address
	LongshoreMetricsListen = "LONGSHORE_METRICS_LISTEN"

	// LongshoreModel is the environment variable used to determine the model to serve
	LongshoreModel = "LONGSHORE_MODEL"

	// LongshoreForcing is the environment variable used to determine the wave forcing file
	LongshoreForcing = "LONGSHORE_FORCING"

	// LongshoreLogFile is the environment variable used to determine the log file path
	LongshoreLogFile = "LONGSHORE_LOG_FILE"
)
