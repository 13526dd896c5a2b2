package server

import (
	"encoding/json"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/milk9111/worldsmith/ecs"
	"github.com/milk9111/worldsmith/ecs/component"
)

// SnapshotEncoder serializes world state for broadcast, optionally
// zstd-compressed. One encoder is reused across ticks.
type SnapshotEncoder struct {
	compress bool
	enc      *zstd.Encoder
}

func NewSnapshotEncoder(compress bool) (*SnapshotEncoder, error) {
	se := &SnapshotEncoder{compress: compress}
	if compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, err
		}
		se.enc = enc
	}
	return se, nil
}

// Compressed reports whether encoded snapshots are zstd frames.
func (se *SnapshotEncoder) Compressed() bool {
	return se != nil && se.compress
}

// Encode builds and serializes the snapshot for one tick.
func (se *SnapshotEncoder) Encode(w *ecs.World, tick uint64) ([]byte, error) {
	msg := BuildSnapshot(w, tick)
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if !se.compress {
		return data, nil
	}
	return se.enc.EncodeAll(data, nil), nil
}

// BuildSnapshot collects every transform-bearing entity into a snapshot
// message, ordered by entity id so payloads are deterministic.
func BuildSnapshot(w *ecs.World, tick uint64) SnapshotMessage {
	msg := SnapshotMessage{Type: MsgSnapshot, Tick: tick}
	if w == nil {
		return msg
	}

	for _, e := range w.Query(component.TransformComponent.ID()) {
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok || tr.Position == nil {
			continue
		}
		x, y, z := tr.Position.Components()
		snap := EntitySnapshot{ID: uint64(e), X: x, Y: y, Z: z, Yaw: tr.Yaw}

		if p, ok := ecs.Get(w, e, component.PrefabComponent); ok {
			snap.Name = p.Name
		}
		if pl, ok := ecs.Get(w, e, component.PlayerComponent); ok && pl.Name != "" {
			snap.Name = pl.Name
		}
		if vel, ok := ecs.Get(w, e, component.VelocityComponent); ok {
			snap.VX, snap.VY, snap.VZ = vel.X, vel.Y, vel.Z
		}
		if cs, ok := ecs.Get(w, e, component.ContactStateComponent); ok && cs.Touching != nil {
			snap.Touching = cs.Touching.Touching()
		}

		msg.Entities = append(msg.Entities, snap)
	}

	sort.Slice(msg.Entities, func(i, j int) bool {
		return msg.Entities[i].ID < msg.Entities[j].ID
	})
	return msg
}
