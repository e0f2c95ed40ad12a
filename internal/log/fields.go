package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRunID       = "run_id"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldFile        = "file"
	FieldWebinarID   = "webinar_id"
	FieldWebinarDate = "webinar_date"
	FieldRows        = "rows"
	FieldMalformed   = "malformed_rows"
	FieldUnresolved  = "unresolved_rows"
	FieldPeople      = "people"
	FieldAttendance  = "attendance"
	FieldBackend     = "backend"
	FieldPath        = "path"
	FieldFingerprint = "fingerprint"
)

// Components defines standard component names
const (
	ComponentPipeline   = "pipeline"
	ComponentNormalizer = "normalizer"
	ComponentMatcher    = "matcher"
	ComponentMaster     = "master"
	ComponentKPI        = "kpi"
	ComponentGeo        = "geo"
	ComponentStorage    = "storage"
	ComponentBackend    = "backend"
	ComponentReport     = "report"
	ComponentAMQP       = "amqp"
)

// Operations defines standard operation names
const (
	OpNormalize = "normalize"
	OpMatch     = "match"
	OpMerge     = "merge"
	OpLoad      = "load"
	OpPersist   = "persist"
	OpReport    = "report"
	OpPublish   = "publish"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
