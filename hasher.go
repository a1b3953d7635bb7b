package titanium

import (
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ValueHasher computes deterministic 64-bit hashes over the tagged [value]
// union built by [normalize], per spec §4.1. It holds no state of its own;
// every [Hash] call starts a fresh [xxhash.Digest] seeded by nothing but the
// value's own bytes, so two hashers (or the same hasher called twice)
// always agree.
type ValueHasher struct{}

// NewValueHasher creates a ValueHasher. There is nothing to configure; the
// constructor exists for symmetry with the rest of the package's
// New-prefixed constructors and so callers have a named type to embed.
func NewValueHasher() *ValueHasher { return &ValueHasher{} }

// byte tags. Each is written before a value's canonical encoding so that,
// e.g., the empty string and a zero-length list never collide.
const (
	tagNull byte = iota
	tagBool
	tagInt
	tagFloat
	tagString
	tagSeq
	tagMap
	tagSet
	tagHandle
)

// sequence kind discriminators, written immediately after tagSeq.
const (
	seqList byte = iota
	seqTuple
)

// Hash computes the 64-bit fingerprint of a single normalized value.
func (h *ValueHasher) Hash(v value) (uint64, error) {
	d := xxhash.New()
	if err := h.write(d, v); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

// HashAny normalizes v and hashes it in one step; a convenience for callers
// (such as tests) that have a raw Go value rather than an already-normalized
// one.
func (h *ValueHasher) HashAny(v any) (uint64, error) {
	nv, err := normalize(v)
	if err != nil {
		return 0, err
	}
	return h.Hash(nv)
}

func (h *ValueHasher) write(d *xxhash.Digest, v value) error {
	switch v.kind {
	case kindIgnored:
		// Contributes nothing at all, per spec §4.1.
		return nil

	case kindNull:
		writeTag(d, tagNull)
		return nil

	case kindBool:
		writeTag(d, tagBool)
		if v.boolean {
			d.Write([]byte{1})
		} else {
			d.Write([]byte{0})
		}
		return nil

	case kindInt:
		writeTag(d, tagInt)
		d.Write(beUint64(uint64(v.integer)))
		return nil

	case kindFloat:
		writeTag(d, tagFloat)
		d.Write(beUint64(math.Float64bits(v.float)))
		return nil

	case kindString:
		writeTag(d, tagString)
		writeLenPrefixed(d, []byte(v.str))
		return nil

	case kindList, kindTuple:
		writeTag(d, tagSeq)
		if v.kind == kindList {
			d.Write([]byte{seqList})
		} else {
			d.Write([]byte{seqTuple})
		}
		d.Write(beUint64(uint64(len(v.elems))))
		for _, elem := range v.elems {
			if err := h.write(d, elem); err != nil {
				return err
			}
		}
		return nil

	case kindMap:
		writeTag(d, tagMap)
		d.Write(beUint64(uint64(len(v.entries))))
		for _, entry := range v.entries {
			keyHash, err := h.Hash(entry.key)
			if err != nil {
				return err
			}
			valHash, err := h.Hash(entry.val)
			if err != nil {
				return err
			}
			d.Write(beUint64(keyHash))
			d.Write(beUint64(valHash))
		}
		return nil

	case kindSet:
		writeTag(d, tagSet)
		hashes := make([]uint64, len(v.elems))
		for i, elem := range v.elems {
			eh, err := h.Hash(elem)
			if err != nil {
				return err
			}
			hashes[i] = eh
		}
		sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
		d.Write(beUint64(uint64(len(hashes))))
		for _, eh := range hashes {
			d.Write(beUint64(eh))
		}
		return nil

	case kindHandle:
		writeTag(d, tagHandle)
		d.Write(beUint64(v.handle.owner.signature))
		return nil

	default:
		return &UnhashableValueError{GoType: "unknown internal value kind"}
	}
}

func writeTag(d *xxhash.Digest, tag byte) {
	d.Write([]byte{tag})
}

// writeLenPrefixed writes an 8-byte big-endian length followed by the
// bytes themselves, per spec §4.1's "UTF-8 length-prefixed bytes".
func writeLenPrefixed(d *xxhash.Digest, b []byte) {
	d.Write(beUint64(uint64(len(b))))
	d.Write(b)
}

// beUint64 encodes network byte order (big-endian), resolving spec §9's
// open question in favor of big-endian / IEEE-754 network order.
func beUint64(v uint64) []byte {
	return []byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
}
