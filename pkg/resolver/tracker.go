package resolver

import (
	"context"
	"sync"

	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
)

// SecretReader fetches the opaque payload a credential's secret reference
// points at. Implementations may hit an external secret manager and must
// honor the context deadline.
type SecretReader interface {
	Fetch(ctx context.Context, ref credentials.SecretRef) ([]byte, error)
}

// UsageSink receives usage records. The default sink is the diagnostic log;
// hosts can forward to their audit pipeline.
type UsageSink interface {
	Record(contextID, credentialID string)
}

// Tracker associates credentials with the contexts that used them, exactly
// once per (context, credential) pair per tracker lifetime. Safe for
// concurrent use.
type Tracker struct {
	mu     sync.Mutex
	seen   map[string]bool
	sink   UsageSink
	logger logger.Logger
}

func NewTracker(log logger.Logger) *Tracker {
	if log == nil {
		log = &logger.Nop{}
	}
	return &Tracker{seen: map[string]bool{}, logger: log}
}

// SetSink installs a usage sink; nil reverts to log-only.
func (t *Tracker) SetSink(sink UsageSink) {
	t.mu.Lock()
	t.sink = sink
	t.mu.Unlock()
}

// Track records one logical use. Repeat calls for the same pair are no-ops
// and do not inflate usage records. It reports whether the pair is recorded
// after the call (always true).
func (t *Tracker) Track(owner contexts.Context, c credentials.Credential) bool {
	key := trackKey(owner, c.ID)
	t.mu.Lock()
	first := !t.seen[key]
	t.seen[key] = true
	sink := t.sink
	t.mu.Unlock()

	if first {
		t.logger.Info("credential used",
			logger.Field{Key: "credential", Value: c.ID},
			logger.Field{Key: "context", Value: ownerID(owner)})
		if sink != nil {
			sink.Record(ownerID(owner), c.ID)
		}
	}
	return true
}

// TrackAll records a batch.
func (t *Tracker) TrackAll(owner contexts.Context, creds []credentials.Credential) {
	for _, c := range creds {
		t.Track(owner, c)
	}
}

func trackKey(owner contexts.Context, id string) string {
	return ownerID(owner) + "\x00" + id
}

func ownerID(owner contexts.Context) string {
	if owner == nil {
		return ""
	}
	return string(owner.Kind()) + ":" + owner.ID()
}

// Access fetches the credential's secret payload and fulfills the tracking
// obligation in one step. The returned flag states whether usage was
// recorded, making the exactly-once invariant observable to callers.
func (e *Engine) Access(ctx context.Context, owner contexts.Context, c credentials.Credential) (value []byte, tracked bool, err error) {
	if e.secrets == nil {
		return nil, false, credentials.ErrUnsupported
	}
	value, err = e.secrets.Fetch(ctx, c.Secret)
	if err != nil {
		return nil, false, err
	}
	return value, e.tracker.Track(owner, c), nil
}

// Peek fetches the payload without tracking. For validation and preview
// flows, which are exempt from usage records.
func (e *Engine) Peek(ctx context.Context, c credentials.Credential) ([]byte, error) {
	if e.secrets == nil {
		return nil, credentials.ErrUnsupported
	}
	return e.secrets.Fetch(ctx, c.Secret)
}
