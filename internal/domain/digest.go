// Package domain implements the duplicate detection pipeline: the
// digest primitives, the staged funnel that narrows candidates down to
// byte-identical groups, the deletion planner and the workflows that
// tie them together.
package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

const (
	// PartialReadSize is the prefix length hashed during the partial
	// digest stage. Most non-duplicates diverge within the first few
	// kilobytes, so a cheap prefix hash discards them before any full
	// read happens.
	PartialReadSize = 8 * 1024

	// fullReadBufferSize bounds the read buffer for full digests and
	// byte comparisons regardless of file size.
	fullReadBufferSize = 256 * 1024
)

var partialBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, PartialReadSize)
		return &buf
	},
}

var fullBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, fullReadBufferSize)
		return &buf
	},
}

var xxhashPool = sync.Pool{
	New: func() any {
		return xxhash.New()
	},
}

// digestFunc computes one digest of the file at path.
type digestFunc func(path m.Path) (string, error)

// digestOutcome pairs the digest of a single file with the error that
// prevented it. Exactly one of the two fields is meaningful.
type digestOutcome struct {
	digest string
	err    error
}

// partialDigest hashes at most the first PartialReadSize bytes of the
// file. Files shorter than the prefix are hashed whole, so the empty
// file has a well-defined partial digest too.
func partialDigest(path m.Path) (string, error) {
	file, err := os.Open(string(path))
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	buf := partialBufPool.Get().(*[]byte)
	defer partialBufPool.Put(buf)

	n, err := io.ReadFull(file, *buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}

	digest := xxhashPool.Get().(*xxhash.Digest)
	defer xxhashPool.Put(digest)

	digest.Reset()
	_, _ = digest.Write((*buf)[:n])

	return strconv.FormatUint(digest.Sum64(), 16), nil
}

// fullDigest hashes the entire file content through a fixed-size buffer.
func fullDigest(path m.Path) (string, error) {
	file, err := os.Open(string(path))
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	buf := fullBufPool.Get().(*[]byte)
	defer fullBufPool.Put(buf)

	digest := sha256.New()
	if _, err := io.CopyBuffer(digest, file, *buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// sameContent reports whether the two files are byte-identical, reading
// both in lockstep so a mismatch near the start stays cheap.
func sameContent(a, b m.Path) (bool, error) {
	fileA, err := os.Open(string(a))
	if err != nil {
		return false, err
	}
	defer func() { _ = fileA.Close() }()

	fileB, err := os.Open(string(b))
	if err != nil {
		return false, err
	}
	defer func() { _ = fileB.Close() }()

	bufA := fullBufPool.Get().(*[]byte)
	defer fullBufPool.Put(bufA)

	bufB := fullBufPool.Get().(*[]byte)
	defer fullBufPool.Put(bufB)

	for {
		nA, errA := io.ReadFull(fileA, *bufA)
		nB, errB := io.ReadFull(fileB, *bufB)

		if errA != nil && !errors.Is(errA, io.EOF) && !errors.Is(errA, io.ErrUnexpectedEOF) {
			return false, errA
		}

		if errB != nil && !errors.Is(errB, io.EOF) && !errors.Is(errB, io.ErrUnexpectedEOF) {
			return false, errB
		}

		if nA != nB || !bytes.Equal((*bufA)[:nA], (*bufB)[:nB]) {
			return false, nil
		}

		// Equal chunk lengths mean either both streams ended here or
		// neither did.
		if errA != nil || errB != nil {
			return true, nil
		}
	}
}
