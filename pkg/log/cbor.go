package log

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// FileExtension is the conventional extension of countdown event logs.
const FileExtension = ".clog"

// ErrUnknownKind is returned when encoding or decoding an event whose Kind
// is not one of the defined kinds.
var ErrUnknownKind = errors.New("unknown event kind")

// logEncMode encodes countdown events. Timestamps are RFC 3339 strings with
// nanosecond precision so tick spacing survives a round trip; durations
// (interval, elapsed) are plain integer nanoseconds.
var logEncMode cbor.EncMode

// logDecMode decodes countdown events. Unknown map keys are ignored so that
// logs written by newer versions with extra fields remain readable.
var logDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	logEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create event log encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	logDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create event log decoder mode: %v", err))
	}
}

// EncodeEvent encodes a countdown event as a single CBOR item.
func EncodeEvent(event Event) ([]byte, error) {
	if !event.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, event.Kind)
	}
	return logEncMode.Marshal(event)
}

// DecodeEvent decodes a single CBOR item into a countdown event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := logDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	if !event.Kind.Valid() {
		return Event{}, fmt.Errorf("%w: %d", ErrUnknownKind, event.Kind)
	}
	return event, nil
}

// NewEncoder returns an encoder writing a stream of events to w, one CBOR
// item per event with no framing.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return logEncMode.NewEncoder(w)
}

// NewDecoder returns a decoder reading an event stream from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return logDecMode.NewDecoder(r)
}
