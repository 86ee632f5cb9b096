package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity id prefixes. Prefixed ids make collection membership obvious
// in logs and store dumps.
const (
	PrefixNote = "note"
	PrefixTag  = "tag"
	PrefixTask = "task"
	PrefixUser = "user"
)

// Generate creates a prefixed unique id using NanoID
// (e.g., "tag-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure
// random generation.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics if generation fails. Entropy
// exhaustion is not recoverable mid-operation, so store implementations
// use this form.
func MustGenerate(prefix string) string {
	nid, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate id: %v", err))
	}
	return nid
}
