package titanium

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

// computeSignature hashes a task instance's name, version, and the sorted
// (by parameter name) contribution of its non-ignored parameters into one
// 64-bit fingerprint, per spec §4.5. Two calls with equal name, version, and
// parameter values always agree, regardless of the order ParamSpecs were
// passed in at the call site.
func computeSignature(name string, version int, params map[string]value) (uint64, error) {
	h := NewValueHasher()
	d := xxhash.New()

	writeTag(d, tagString)
	writeLenPrefixed(d, []byte(name))
	d.Write(beUint64(uint64(int64(version))))

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := params[k]
		if v.kind == kindIgnored {
			continue
		}
		writeLenPrefixed(d, []byte(k))
		if err := h.write(d, v); err != nil {
			return 0, err
		}
	}
	return d.Sum64(), nil
}
