package reddit

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

// CredentialSet is one registered Reddit application
type CredentialSet struct {
	ID        string
	Secret    string
	UserAgent string
}

// Rotator hands out credential sets in round-robin order.
// It is safe for concurrent use.
type Rotator struct {
	sets []CredentialSet
	next atomic.Uint64
}

// NewRotator builds a rotator from parallel lists of client ids, secrets and user agents
func NewRotator(ids, secrets, userAgents []string) (*Rotator, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one reddit client id is required", entity.ErrConfig)
	}
	if len(ids) != len(secrets) || len(ids) != len(userAgents) {
		return nil, fmt.Errorf("%w: client ids (%d), secrets (%d) and user agents (%d) must have equal length",
			entity.ErrConfig, len(ids), len(secrets), len(userAgents))
	}

	sets := make([]CredentialSet, len(ids))
	for i := range ids {
		set := CredentialSet{
			ID:        strings.TrimSpace(ids[i]),
			Secret:    strings.TrimSpace(secrets[i]),
			UserAgent: strings.TrimSpace(userAgents[i]),
		}
		if set.ID == "" || set.Secret == "" || set.UserAgent == "" {
			return nil, fmt.Errorf("%w: credential set %d has an empty field", entity.ErrConfig, i)
		}
		sets[i] = set
	}

	return &Rotator{sets: sets}, nil
}

// Next returns the next credential set, wrapping around the list
func (r *Rotator) Next() CredentialSet {
	n := r.next.Add(1) - 1
	return r.sets[n%uint64(len(r.sets))]
}

// Len returns the number of credential sets
func (r *Rotator) Len() int {
	return len(r.sets)
}
