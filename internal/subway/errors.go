package subway

import "errors"

// Segment list errors
var (
	ErrDuplicateSegment   = errors.New("both stations are already on the line")
	ErrUnconnectedSegment = errors.New("neither station is on the line")
	ErrInvalidDistance    = errors.New("distance must be shorter than the segment it splits")
	ErrInvalidSegment     = errors.New("up and down station must differ")
	ErrSingleSegment      = errors.New("line must keep at least one segment")
	ErrNotTerminalStation = errors.New("only the last station of a line can be removed")
	ErrBrokenPath         = errors.New("segments do not form a single path")
)

// Path query errors
var (
	ErrSameStation = errors.New("source and target station are the same")
	ErrNoPath      = errors.New("no path between source and target")
)

// Service errors
var (
	ErrNotFound     = errors.New("not found")
	ErrStationInUse = errors.New("station is used by a line")
	ErrInvalidName  = errors.New("name cannot be empty")
)

// IsDomainError reports whether err is a rule violation the caller can fix,
// as opposed to a storage or internal failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrDuplicateSegment,
		ErrUnconnectedSegment,
		ErrInvalidDistance,
		ErrInvalidSegment,
		ErrSingleSegment,
		ErrNotTerminalStation,
		ErrSameStation,
		ErrNoPath,
		ErrStationInUse,
		ErrInvalidName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
