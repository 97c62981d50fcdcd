package osmfusion

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrLaneletNotFound is returned when an attribute or a match references lanelet which is not in the map
	ErrLaneletNotFound = errors.New("lanelet not found")
	// ErrUnsupportedMethod is returned when alignment method is unknown
	ErrUnsupportedMethod = errors.New("alignment method not supported")
	// ErrUnsupportedFormat is returned when file extension can't be handled
	ErrUnsupportedFormat = errors.New("file format not supported")
	// ErrAmbiguousPruning is returned (as diagnostic) when wrong lanelet can't be identified clearly
	ErrAmbiguousPruning = errors.New("can't identify wrong lanelet clearly")
)

// LaneletNotFoundError is a lookup failure. Either ID or pair of bounds is set
type LaneletNotFoundError struct {
	ID    LaneletID
	Left  CurveID
	Right CurveID
}

func (e *LaneletNotFoundError) Error() string {
	if e.ID < 0 {
		return fmt.Sprintf("lanelet with bounds %d/%d not found", e.Left, e.Right)
	}
	return fmt.Sprintf("lanelet %d not found", e.ID)
}

func (e *LaneletNotFoundError) Is(target error) bool {
	return target == ErrLaneletNotFound
}

// AmbiguousPruningError describes segment which still has more lanelets than expected but none of them is an orphan
type AmbiguousPruningError struct {
	Match   int
	Segment int
	Present int
	Target  int
}

func (e *AmbiguousPruningError) Error() string {
	return fmt.Sprintf("match %d, segment %d: %d lanelets present, %d expected: %s", e.Match, e.Segment, e.Present, e.Target, ErrAmbiguousPruning)
}

func (e *AmbiguousPruningError) Is(target error) bool {
	return target == ErrAmbiguousPruning
}

// UnsupportedMethodError is returned by Align for unknown method names
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("'%s': %s", e.Method, ErrUnsupportedMethod)
}

func (e *UnsupportedMethodError) Is(target error) bool {
	return target == ErrUnsupportedMethod
}

// LaneCountError is reported when lanes value can't be parsed. Segment is treated as having no data
type LaneCountError struct {
	Match   int
	Segment int
	Value   string
}

func (e *LaneCountError) Error() string {
	return fmt.Sprintf("match %d, segment %d: can't parse lanes value '%s'", e.Match, e.Segment, e.Value)
}
