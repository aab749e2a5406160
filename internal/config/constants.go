package config

// ConfigFileName is the engine configuration file looked up by FindConfig.
const ConfigFileName = "termcore.yaml"

// ConfigFileNames are all recognized configuration file names, in lookup order.
var ConfigFileNames = []string{ConfigFileName, "termcore.yml"}

// Engine defaults
const (
	// DefaultEqualityLimit bounds the recursion of a single definitional
	// equality query. Exhausting it yields Unknown, never No.
	DefaultEqualityLimit = 64

	// DefaultLogLevel is used when the config file does not set log_level.
	DefaultLogLevel = "info"
)

// Names of the primitive types as they appear in dumps and snapshots.
const (
	BoolTypeName   = "Bool"
	Int32TypeName  = "Integer32"
	Int64TypeName  = "Integer64"
	UniqueTypeName = "Unique"
	GodTypeName    = "TYPE"
)

// SnapshotFormatVersion is written into every snapshot database.
// Bump when the schema or payload encoding changes.
const SnapshotFormatVersion = 1
