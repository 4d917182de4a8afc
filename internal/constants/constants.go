package constants

import "time"

// Project layout
const (
	// DefaultConfigFile is the indexer config read when none is given
	DefaultConfigFile = "config.yaml"

	// DefaultGeneratedDir is where generated artifacts are written
	DefaultGeneratedDir = "generated"

	// ModelFileName is the template model written by generate
	ModelFileName = "model.json"

	// SchemaFileName is the entity schema written by generate
	SchemaFileName = "schema.graphql"

	// DirPerm is the permission of created directories
	DirPerm = 0o755

	// FilePerm is the permission of written files
	FilePerm = 0o644
)

// Run constants
const (
	// DefaultTimeout bounds a whole generate run
	DefaultTimeout = 30 * time.Second

	// DefaultLogLevel is the default log level
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log encoding
	DefaultLogFormat = "console"
)

// Metrics constants
const (
	// MetricsNamespace prefixes every exported metric
	MetricsNamespace = "indexer"

	// MetricsSubsystem groups the codegen metrics
	MetricsSubsystem = "codegen"
)

// EnvPrefix prefixes every environment variable the tool reads
const EnvPrefix = "CODEGEN_"
