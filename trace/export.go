// File: trace/export.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Msgpack export of the journal, for offline analysis of a run.

package trace

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// export head carries run metadata ahead of the record stream.
type header struct {
	Records int    `msgpack:"records"`
	Dropped uint64 `msgpack:"dropped"`
}

// Export writes the journal's current records to w as a msgpack
// header followed by one message per record.
func (j *Journal) Export(w io.Writer) error {
	records := j.Snapshot()
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(header{Records: len(records), Dropped: j.Dropped()}); err != nil {
		return err
	}
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a journal export back into records.
func Decode(r io.Reader) ([]Record, error) {
	dec := msgpack.NewDecoder(r)
	var hdr header
	if err := dec.Decode(&hdr); err != nil {
		return nil, err
	}
	records := make([]Record, hdr.Records)
	for i := range records {
		if err := dec.Decode(&records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}
