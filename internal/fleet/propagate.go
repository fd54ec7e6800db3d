// Package fleet implements the entity actions exposed to UI layers: vehicle
// and account management, the exit/return movement lifecycle, and the
// best-effort propagation of every local mutation to the remote store.
package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/autocheckhq/autocheck/internal/blob"
	"github.com/autocheckhq/autocheck/internal/logging"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/remote"
	"github.com/autocheckhq/autocheck/internal/session"
)

// Propagator pushes local mutations to the remote store as detached tasks.
// Propagation is fire-and-forget: failures are logged and abandoned, the
// optimistic local mutation is never rolled back, nothing is queued for
// retry. Without a resolved tenant every push is a no-op.
type Propagator struct {
	remote  remote.Store
	blobs   blob.Storage
	session *session.Session
	log     logging.Logger
	wg      sync.WaitGroup
}

func NewPropagator(rs remote.Store, blobs blob.Storage, sess *session.Session, log logging.Logger) *Propagator {
	return &Propagator{
		remote:  rs,
		blobs:   blobs,
		session: sess,
		log:     log.With("component", "propagate"),
	}
}

// Wait blocks until all in-flight propagations settle. Used on shutdown and
// in tests; normal operation never waits.
func (p *Propagator) Wait() { p.wg.Wait() }

func (p *Propagator) tenant() (string, bool) {
	if p.remote == nil {
		return "", false
	}
	t := p.session.TenantID()
	return t, t != ""
}

// SaveItem upserts one entity remotely in the background.
func (p *Propagator) SaveItem(collection, id string, v any) {
	tenantID, ok := p.tenant()
	if !ok {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		p.log.Error(context.Background(), "failed to encode entity for propagation",
			"collection", collection, "id", id, "error", err)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx := context.Background()
		if err := p.remote.SaveItem(ctx, tenantID, collection, id, data); err != nil {
			p.log.Warn(ctx, "remote save failed, local copy kept",
				"collection", collection, "id", id, "error", err)
		}
	}()
}

// DeleteItem removes one entity remotely in the background.
func (p *Propagator) DeleteItem(collection, id string) {
	tenantID, ok := p.tenant()
	if !ok {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx := context.Background()
		if err := p.remote.DeleteItem(ctx, tenantID, collection, id); err != nil {
			p.log.Warn(ctx, "remote delete failed",
				"collection", collection, "id", id, "error", err)
		}
	}()
}

// SaveMovement propagates a movement. The record is written immediately;
// inline photo payloads are uploaded to object storage concurrently, and once
// every upload settles a second write substitutes the resolved URLs. Eventual,
// not synchronous: readers of the remote store may briefly see inline
// payloads.
func (p *Propagator) SaveMovement(m models.Movement) {
	tenantID, ok := p.tenant()
	if !ok {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx := context.Background()

		p.saveMovementRecord(ctx, tenantID, m)

		uploaded := p.uploadPhotos(ctx, &m)
		if uploaded {
			p.saveMovementRecord(ctx, tenantID, m)
		}
	}()
}

func (p *Propagator) saveMovementRecord(ctx context.Context, tenantID string, m models.Movement) {
	data, err := json.Marshal(m)
	if err != nil {
		p.log.Error(ctx, "failed to encode movement", "id", m.ID, "error", err)
		return
	}
	if err := p.remote.SaveItem(ctx, tenantID, remote.CollectionMovements, m.ID, data); err != nil {
		p.log.Warn(ctx, "remote save failed, local copy kept",
			"collection", remote.CollectionMovements, "id", m.ID, "error", err)
	}
}

// uploadPhotos externalizes every inline payload on m, mutating the photo
// slices in place. Uploads run concurrently with no cap and the call returns
// once all of them settle. Reports whether at least one payload resolved to
// a URL.
func (p *Propagator) uploadPhotos(ctx context.Context, m *models.Movement) bool {
	if p.blobs == nil {
		return false
	}

	exit := clonePhotos(m.Exit.Photos)
	var ret []models.Photo
	if m.Return != nil {
		ret = clonePhotos(m.Return.Photos)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	uploaded := false

	upload := func(photos []models.Photo, phase string, i int) {
		defer wg.Done()

		photo := photos[i]
		name := fmt.Sprintf("%s_%s_%d.jpg", m.ID, phase, i)
		if photo.Label != "" {
			name = fmt.Sprintf("%s_%s_%s.jpg", m.ID, phase, photo.Label)
		}

		url, err := p.blobs.Upload(ctx, name, []byte(photo.Data))
		if err != nil {
			p.log.Warn(ctx, "photo upload failed, payload kept inline",
				"movement", m.ID, "photo", name, "error", err)
			return
		}

		mu.Lock()
		photos[i] = models.Photo{
			Ref:        url,
			CapturedAt: photo.CapturedAt,
			Label:      photo.Label,
			ByteSize:   photo.ByteSize,
		}
		uploaded = true
		mu.Unlock()
	}

	for i := range exit {
		if exit[i].Inline() {
			wg.Add(1)
			go upload(exit, "exit", i)
		}
	}
	for i := range ret {
		if ret[i].Inline() {
			wg.Add(1)
			go upload(ret, "return", i)
		}
	}
	wg.Wait()

	if !uploaded {
		return false
	}

	m.Exit.Photos = exit
	if m.Return != nil {
		r := *m.Return
		r.Photos = ret
		m.Return = &r
	}
	return true
}

func clonePhotos(photos []models.Photo) []models.Photo {
	if photos == nil {
		return nil
	}
	return append([]models.Photo(nil), photos...)
}
