package fsop

// ProgressEvent represents a progress update during pack and unpack operations.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the file currently being processed, if applicable.
	Path string

	// BytesDone is the number of bytes completed in the current stage.
	BytesDone uint64

	// BytesTotal is the total bytes for the current stage.
	// Zero indicates the total is unknown.
	BytesTotal uint64

	// FilesDone is the number of files completed.
	FilesDone int

	// FilesTotal is the total number of files.
	// Zero indicates the total is unknown.
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages for pack and unpack operations.
const (
	// StageReading indicates a container or manifest is being read.
	StageReading ProgressStage = iota

	// StageValidating indicates the manifest is being checked and completed.
	StageValidating

	// StagePacking indicates shader files are being read into the container.
	StagePacking

	// StageExtracting indicates the container is being decoded.
	StageExtracting

	// StageWriting indicates output files are being written.
	StageWriting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageReading:
		return "reading"
	case StageValidating:
		return "validating"
	case StagePacking:
		return "packing"
	case StageExtracting:
		return "extracting"
	case StageWriting:
		return "writing"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Implementations must be safe for concurrent calls when used with Batch.
type ProgressFunc func(ProgressEvent)
