package domain

import (
	"fmt"
	"sync"
	"time"
)

// KeyVersionStatus represents the lifecycle state of a key version.
//
// The lifecycle is a one-way state machine:
//
//	ACTIVE -> RETAINED -> RETIRED
//
//   - ACTIVE: accepted for both read and write; exactly one version is active.
//   - RETAINED: accepted for read only; no longer used for new writes. A version
//     stays retained until a migration sweep has resealed every envelope stored
//     under it.
//   - RETIRED: no longer derivable; decryption of data still under the version
//     fails with a key-version error. Only reachable after a completed sweep.
type KeyVersionStatus string

const (
	// VersionActive marks the version used for all new seal operations.
	VersionActive KeyVersionStatus = "active"

	// VersionRetained marks a version readable for existing envelopes but no
	// longer used for new writes.
	VersionRetained KeyVersionStatus = "retained"

	// VersionRetired marks a version whose key is no longer derivable.
	VersionRetired KeyVersionStatus = "retired"
)

// KeyVersion is one row of the version lifecycle configuration.
type KeyVersion struct {
	Version   uint
	Status    KeyVersionStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KeyVersionState is the process-wide view of the key version lifecycle.
//
// It describes the currently active version for new writes and the set of
// older versions still accepted for decryption. It is mutated only by the
// rotation coordinator and read by the key derivation service on every
// derivation call, so reads take a shared lock and transitions take an
// exclusive one.
type KeyVersionState struct {
	mu            sync.RWMutex
	activeVersion uint
	versions      map[uint]KeyVersionStatus
}

// NewKeyVersionState builds the in-memory state from persisted version rows.
// Exactly one version must be active; zero or multiple active versions is a
// fatal configuration error.
func NewKeyVersionState(versions []KeyVersion) (*KeyVersionState, error) {
	s := &KeyVersionState{
		versions: make(map[uint]KeyVersionStatus, len(versions)),
	}

	for _, v := range versions {
		if v.Version == LegacyKeyVersion {
			return nil, fmt.Errorf("%w: version 0 is reserved for legacy envelopes", ErrInvalidVersionTransition)
		}
		s.versions[v.Version] = v.Status
		if v.Status == VersionActive {
			if s.activeVersion != 0 {
				return nil, fmt.Errorf(
					"%w: multiple active versions (%d and %d)",
					ErrNoActiveKeyVersion,
					s.activeVersion,
					v.Version,
				)
			}
			s.activeVersion = v.Version
		}
	}

	if s.activeVersion == 0 {
		return nil, ErrNoActiveKeyVersion
	}

	return s, nil
}

// ActiveVersion returns the version used for new seal operations.
func (s *KeyVersionState) ActiveVersion() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeVersion
}

// Status returns the lifecycle status for a version and whether it is known.
func (s *KeyVersionState) Status(version uint) (KeyVersionStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.versions[version]
	return status, ok
}

// IsDerivable reports whether keys for the version may still be derived.
// Active and retained versions are derivable; retired and unknown versions
// are not.
func (s *KeyVersionState) IsDerivable(version uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.versions[version]
	return ok && status != VersionRetired
}

// BeginRotation moves the current active version to retained and activates
// newVersion. The new version must be strictly newer than the current active
// version and must not already exist in the state.
//
// Existing envelopes remain readable under the retained version; all new seal
// operations immediately use newVersion.
func (s *KeyVersionState) BeginRotation(newVersion uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newVersion <= s.activeVersion {
		return fmt.Errorf(
			"%w: new version %d must be greater than active version %d",
			ErrInvalidVersionTransition,
			newVersion,
			s.activeVersion,
		)
	}
	if _, exists := s.versions[newVersion]; exists {
		return fmt.Errorf("%w: version %d already exists", ErrInvalidVersionTransition, newVersion)
	}

	s.versions[s.activeVersion] = VersionRetained
	s.versions[newVersion] = VersionActive
	s.activeVersion = newVersion

	return nil
}

// Retire marks a retained version as retired, making its key underivable.
//
// Only retained versions can be retired; retiring the active version or an
// unknown version is an invalid transition. The caller is responsible for
// verifying beforehand that no stored envelope still references the version
// (the rotation coordinator re-counts from the store, never from memory).
func (s *KeyVersionState) Retire(version uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.versions[version]
	if !ok {
		return fmt.Errorf("%w: unknown version %d", ErrInvalidVersionTransition, version)
	}
	if status == VersionActive {
		return fmt.Errorf("%w: cannot retire active version %d", ErrInvalidVersionTransition, version)
	}
	if status == VersionRetired {
		return fmt.Errorf("%w: version %d already retired", ErrInvalidVersionTransition, version)
	}

	s.versions[version] = VersionRetired

	return nil
}

// Snapshot returns a copy of all versions and their statuses, for logging and
// operator-facing output.
func (s *KeyVersionState) Snapshot() map[uint]KeyVersionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uint]KeyVersionStatus, len(s.versions))
	for v, status := range s.versions {
		out[v] = status
	}
	return out
}
