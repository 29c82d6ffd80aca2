// Binary encoding for stored parse results.
//
// Each value is a one-byte format version followed by a gob stream of
// events.FileEvents. The Event variants are registered with gob so the
// interface slice round-trips with its concrete types.
package bbolt

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/corey/codetrail/internal/domain/events"
)

const formatV1 byte = 1

func init() {
	for _, e := range events.All() {
		gob.Register(e)
	}
}

func encodeFileEvents(fe *events.FileEvents) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(formatV1)
	if err := gob.NewEncoder(&buf).Encode(fe); err != nil {
		return nil, fmt.Errorf("encode %s: %w", fe.Path, err)
	}
	return buf.Bytes(), nil
}

func decodeFileEvents(data []byte) (*events.FileEvents, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty record")
	}
	if data[0] != formatV1 {
		return nil, fmt.Errorf("unknown record format %d", data[0])
	}
	var fe events.FileEvents
	if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(&fe); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	// gob drops empty slices; parameters are always a list.
	for i, e := range fe.Events {
		if fn, ok := e.(events.FunctionDefinition); ok && fn.Parameters == nil {
			fn.Parameters = []string{}
			fe.Events[i] = fn
		}
	}
	return &fe, nil
}
