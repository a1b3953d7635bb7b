package titanium

import (
	"encoding/binary"
	"fmt"
)

// encodeHeader writes the fixed on-disk header spec §6 defines:
// "PT01" magic, one format-tag byte, an 8-byte big-endian task-name length,
// the name's UTF-8 bytes, and an 8-byte big-endian version, followed by the
// caller-supplied, already-serialized payload.
func encodeHeader(rec Record, payload []byte) []byte {
	name := []byte(rec.TaskName)
	buf := make([]byte, 0, 4+1+8+len(name)+8+len(payload))
	buf = append(buf, recordMagic...)
	buf = append(buf, byte(rec.Format))
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(name)))
	buf = append(buf, name...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(int64(rec.Version)))
	buf = append(buf, payload...)
	return buf
}

// decodeHeader parses the fixed header off the front of b and returns the
// partially-populated record (Payload left as the raw serialized bytes)
// plus the remaining payload slice. Any structural inconsistency (bad
// magic, truncated length fields, a length that overruns b) is reported
// as [CacheCorruptionError] rather than a generic decode error, so callers
// can uniformly treat it as "invalidate and recompute" per spec §7.
func decodeHeader(signature uint64, b []byte) (rec Record, payload []byte, err error) {
	if len(b) < 4+1+8 {
		return Record{}, nil, &CacheCorruptionError{Signature: signature, Reason: "record shorter than fixed header"}
	}
	if string(b[0:4]) != recordMagic {
		return Record{}, nil, &CacheCorruptionError{Signature: signature, Reason: "bad magic"}
	}
	format := formatTag(b[4])
	if _, err := serializerFor(format); err != nil {
		return Record{}, nil, &CacheCorruptionError{Signature: signature, Reason: fmt.Sprintf("unknown format tag %d", format)}
	}

	nameLen := binary.BigEndian.Uint64(b[5:13])
	off := 13
	if uint64(len(b)-off) < nameLen {
		return Record{}, nil, &CacheCorruptionError{Signature: signature, Reason: "truncated task name"}
	}
	name := string(b[off : off+int(nameLen)])
	off += int(nameLen)

	if len(b)-off < 8 {
		return Record{}, nil, &CacheCorruptionError{Signature: signature, Reason: "truncated version field"}
	}
	version := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	rec = Record{
		Signature: signature,
		TaskName:  name,
		Version:   int(version),
		Format:    format,
	}
	return rec, b[off:], nil
}
