package titanium

import (
	"context"
	"testing"
)

// AssertSignatureEqual fails t if a and b have different signatures: the
// basic "interchangeable instances" property spec §3 requires of any
// two task instances built from equal name, version, and contributing
// parameters.
func AssertSignatureEqual(t testing.TB, a, b *LazyOutput) {
	t.Helper()
	if a.Signature() != b.Signature() {
		t.Errorf("titanium.AssertSignatureEqual: %016x != %016x", a.Signature(), b.Signature())
	}
}

// AssertSignatureDiffers fails t if a and b share a signature.
func AssertSignatureDiffers(t testing.TB, a, b *LazyOutput) {
	t.Helper()
	if a.Signature() == b.Signature() {
		t.Errorf("titanium.AssertSignatureDiffers: both have signature %016x", a.Signature())
	}
}

// AssertCacheHit runs target under engine, then fails t unless the given
// store already held a record for target's signature before the run (i.e.
// the run should have been a pure cache replay, not a recomputation).
func AssertCacheHit(t testing.TB, ctx context.Context, engine *Engine, store Store, target *LazyOutput) {
	t.Helper()
	existed, err := store.Exists(ctx, target.Signature())
	if err != nil {
		t.Fatalf("titanium.AssertCacheHit: checking store: %v", err)
	}
	if !existed {
		t.Errorf("titanium.AssertCacheHit: no prior record for signature %016x", target.Signature())
	}
	if _, err := engine.Run(ctx, target); err != nil {
		t.Errorf("titanium.AssertCacheHit: run failed: %v", err)
	}
}

// AssertDeclarationsValid is the static counterpart to the runtime
// signature assertions: it fails t if any [TaskDef] in dir has a parameter
// referenced by more than one classification, which would indicate a
// [ParamSpec] bookkeeping bug in the caller rather than anything the
// engine itself can catch at runtime.
func AssertDeclarationsValid(t testing.TB, dir string) {
	t.Helper()

	results, err := AnalyzeDir(dir)
	if err != nil {
		t.Fatalf("titanium.AssertDeclarationsValid: analyzing %q: %v", dir, err)
	}

	for _, r := range results {
		seen := map[string]string{}
		record := func(bucket string, names []string) {
			for _, n := range names {
				if prior, ok := seen[n]; ok && prior != bucket {
					t.Errorf("titanium.AssertDeclarationsValid: %s (%s): parameter %q classified as both %s and %s",
						r.TaskName, r.File, n, prior, bucket)
				}
				seen[n] = bucket
			}
		}
		record("plain", r.Plain)
		record("injectable", r.Injectable)
		record("ignored", r.Ignored)
	}
}
