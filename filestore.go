package titanium

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore is the default on-disk [Store]: one file per signature, named
// by its hex signature, under Root. Writes go through a temp-dir-then-
// rename sequence, so a crash mid-write can never leave a truncated or
// half-written record at the canonical path; a concurrent Load sees
// either the previous complete file or the new one, never a partial one.
type FileStore struct {
	Root       string
	Serializer Serializer
}

// NewFileStore creates a FileStore rooted at dir, creating it if necessary.
// ser defaults to [JSONSerializer] when nil.
func NewFileStore(dir string, ser Serializer) (*FileStore, error) {
	if ser == nil {
		ser = JSONSerializer{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating cache dir: %v", ErrStorageError, err)
	}
	return &FileStore{Root: dir, Serializer: ser}, nil
}

func (f *FileStore) path(signature uint64) string {
	return filepath.Join(f.Root, fmt.Sprintf("%016x.bin", signature))
}

func (f *FileStore) Save(_ context.Context, rec Record) error {
	payload, err := f.Serializer.Encode(rec.Payload)
	if err != nil {
		return err
	}
	rec.Format = f.Serializer.Tag()
	blob := encodeHeader(rec, payload)

	tmpDir, err := os.MkdirTemp(f.Root, fmt.Sprintf("tmp-%016x-", rec.Signature))
	if err != nil {
		return fmt.Errorf("%w: creating temp dir: %v", ErrStorageError, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmpDir)
		}
	}()

	tmpFile := filepath.Join(tmpDir, "record.bin")
	if err := os.WriteFile(tmpFile, blob, 0o644); err != nil {
		return fmt.Errorf("%w: writing temp record: %v", ErrStorageError, err)
	}

	dest := f.path(rec.Signature)
	if err := os.Rename(tmpFile, dest); err != nil {
		return fmt.Errorf("%w: renaming record into place: %v", ErrStorageError, err)
	}
	committed = true
	_ = os.RemoveAll(tmpDir)
	return nil
}

func (f *FileStore) Load(_ context.Context, signature uint64) (Record, bool, error) {
	b, err := os.ReadFile(f.path(signature))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("%w: reading record: %v", ErrStorageError, err)
	}

	rec, payload, err := decodeHeader(signature, b)
	if err != nil {
		return Record{}, false, err
	}
	ser, err := serializerFor(rec.Format)
	if err != nil {
		return Record{}, false, err
	}
	var v any
	if err := ser.Decode(payload, &v); err != nil {
		return Record{}, false, err
	}
	rec.Payload = v
	return rec, true, nil
}

func (f *FileStore) Exists(_ context.Context, signature uint64) (bool, error) {
	_, err := os.Stat(f.path(signature))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat record: %v", ErrStorageError, err)
}

func (f *FileStore) Invalidate(_ context.Context, signature uint64) error {
	if err := os.Remove(f.path(signature)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: removing record: %v", ErrStorageError, err)
	}
	return nil
}
