package common

const (
	ProfileFileName = "nmlc.toml"
	NMLCVersion     = "0.1.0"
)

// MaxActionIDs is the number of action IDs available per feature.  IDs are
// one byte wide and 0xFF is reserved by the engine.
const MaxActionIDs = 255
