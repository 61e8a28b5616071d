// Package cache stores compiled bytecode keyed by the content that produced
// it, so unchanged sources are not recompiled.
package cache

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode so equal keys always hash identically.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cache: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Key identifies one compilation. Two compilations with equal keys produce
// interchangeable bytecode.
type Key struct {
	Source          [32]byte `cbor:"1,keyasint"`
	Filename        string   `cbor:"2,keyasint"`
	CompileAsModule bool     `cbor:"3,keyasint"`
	Runtime         string   `cbor:"4,keyasint"`
	RuntimeVersion  string   `cbor:"5,keyasint"`
}

// NewKey builds a Key for code compiled by runtime at runtimeVersion.
func NewKey(code []byte, filename string, compileAsModule bool, runtime, runtimeVersion string) Key {
	return Key{
		Source:          sha256.Sum256(code),
		Filename:        filename,
		CompileAsModule: compileAsModule,
		Runtime:         runtime,
		RuntimeVersion:  runtimeVersion,
	}
}

// Digest returns the SHA-256 of the key's canonical CBOR encoding.
func (k Key) Digest() ([32]byte, error) {
	data, err := cborEncMode.Marshal(k)
	if err != nil {
		return [32]byte{}, fmt.Errorf("cache: marshal key: %w", err)
	}
	return sha256.Sum256(data), nil
}

// Record is the stored value for a key.
type Record struct {
	Bytecode       []byte `cbor:"1,keyasint"`
	Filename       string `cbor:"2,keyasint"`
	RuntimeVersion string `cbor:"3,keyasint"`
	CreatedAt      int64  `cbor:"4,keyasint"`
}

func newRecord(k Key, bytecode []byte) Record {
	return Record{
		Bytecode:       bytecode,
		Filename:       k.Filename,
		RuntimeVersion: k.RuntimeVersion,
		CreatedAt:      time.Now().Unix(),
	}
}

// MarshalRecord serializes a Record to CBOR bytes.
func MarshalRecord(r Record) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalRecord deserializes a Record from CBOR bytes.
func UnmarshalRecord(data []byte) (Record, error) {
	var r Record
	if err := cbor.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("cache: unmarshal record: %w", err)
	}
	return r, nil
}
