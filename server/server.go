package server

import (
	"context"
	"encoding/json"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/milk9111/worldsmith/common"
	"github.com/milk9111/worldsmith/config"
	"github.com/milk9111/worldsmith/ecs"
	"github.com/milk9111/worldsmith/ecs/component"
	"github.com/milk9111/worldsmith/ecs/system"
	"github.com/milk9111/worldsmith/physics"
	"github.com/milk9111/worldsmith/physics/native"
	"github.com/milk9111/worldsmith/prefabs"
)

// Server owns one world instance: the ECS world, its systems, the session
// hub, and the fixed-tick loop. Everything that touches the world runs on the
// loop goroutine; the hub is the only crossing point for network traffic.
type Server struct {
	cfg     config.Config
	world   *ecs.World
	sched   *ecs.Scheduler
	scripts *system.ScriptSystem
	hub     *Hub
	encoder *SnapshotEncoder

	players map[string]ecs.Entity
	tick    uint64
}

// New builds a server from config. With physics disabled the world still
// scripts and replicates; colliders stay inert. A zero-value config that
// skipped config.Load still gets a sane snapshot cadence.
func New(cfg config.Config) (*Server, error) {
	if cfg.Snapshot.EveryTicks <= 0 {
		cfg.Snapshot.EveryTicks = 1
	}
	var space *native.Space
	var cache *physics.ShapeCache
	if cfg.PhysicsEnabled() {
		space = native.NewSpace()
		space.SetGravity(0, cfg.Gravity, 0)
		cache = physics.NewShapeCache(space)
	} else {
		cache = physics.NewShapeCache(nil)
	}

	scripts := system.NewScriptSystem(cfg.FixedDelta())
	phys := system.NewPhysicsSystem(space, cache, cfg.FixedDelta())

	encoder, err := NewSnapshotEncoder(cfg.Snapshot.Compress)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		world:   ecs.NewWorld(),
		sched:   ecs.NewScheduler(scripts, phys),
		scripts: scripts,
		hub:     NewHub(),
		encoder: encoder,
		players: make(map[string]ecs.Entity),
	}, nil
}

// Hub returns the session hub for HTTP wiring.
func (s *Server) Hub() *Hub {
	return s.hub
}

// World returns the ECS world; only the loop goroutine may touch it.
func (s *Server) World() *ecs.World {
	return s.world
}

// LoadWorld spawns every embedded prefab except the player template.
func (s *Server) LoadWorld() error {
	for _, name := range prefabs.List() {
		if name == "player.yaml" {
			continue
		}
		if _, err := prefabs.SpawnFile(s.world, name); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the fixed-tick loop until the context is canceled. Prefab file
// events trigger respawn and script recompilation between ticks.
func (s *Server) Run(ctx context.Context, reload <-chan string) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) * s.cfg.FixedDelta()))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			s.reload(name)
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick runs one simulation step: drain staged input, update systems, and
// broadcast a snapshot on the configured cadence.
func (s *Server) Tick() {
	cmds, departed := s.hub.Drain()
	for _, id := range departed {
		s.dropSession(id)
	}
	for _, cmd := range cmds {
		s.apply(cmd)
	}

	s.sched.Update(s.world)
	s.tick++

	if s.tick%uint64(s.cfg.Snapshot.EveryTicks) == 0 {
		data, err := s.encoder.Encode(s.world, s.tick)
		if err != nil {
			log.Printf("server: snapshot encode: %v", err)
			return
		}
		s.hub.Broadcast(data)
	}
}

func (s *Server) apply(cmd Command) {
	switch cmd.Msg.Type {
	case MsgJoin:
		s.join(cmd.Session, cmd.Msg.Name)
	case MsgMove:
		s.move(cmd.Session, cmd.Msg.X, cmd.Msg.Y, cmd.Msg.Z)
	case MsgSpawn:
		s.spawnPrefab(cmd.Session, cmd.Msg.Prefab)
	default:
		s.reject(cmd.Session, "unknown message type")
	}
}

func (s *Server) join(session, name string) {
	if _, ok := s.players[session]; ok {
		s.reject(session, "already joined")
		return
	}

	e, err := prefabs.SpawnFile(s.world, "player.yaml")
	if err != nil {
		log.Printf("server: session %s spawn player: %v", session, err)
		s.reject(session, "spawn failed")
		return
	}
	_ = ecs.Add(s.world, e, component.PlayerComponent, component.Player{SessionID: session, Name: name})
	_ = ecs.Add(s.world, e, component.VelocityComponent, component.Velocity{})
	s.players[session] = e

	payload, err := json.Marshal(WelcomeMessage{
		Type:       MsgWelcome,
		SessionID:  session,
		Entity:     uint64(e),
		TickRate:   s.cfg.TickRate,
		Compressed: s.encoder.Compressed(),
	})
	if err != nil {
		return
	}
	s.hub.SendTo(session, payload)
}

// maxMoveSpeed caps client-requested velocity per axis.
const maxMoveSpeed = 12.0

func (s *Server) move(session string, x, y, z float64) {
	e, ok := s.players[session]
	if !ok {
		s.reject(session, "join first")
		return
	}
	_ = ecs.Add(s.world, e, component.VelocityComponent, component.Velocity{
		X: common.Clamp(x, -maxMoveSpeed, maxMoveSpeed),
		Y: common.Clamp(y, -maxMoveSpeed, maxMoveSpeed),
		Z: common.Clamp(z, -maxMoveSpeed, maxMoveSpeed),
	})
}

func (s *Server) spawnPrefab(session, name string) {
	if name == "" || name == "player.yaml" {
		s.reject(session, "invalid prefab")
		return
	}
	known := false
	for _, n := range prefabs.List() {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		s.reject(session, "unknown prefab")
		return
	}
	if _, err := prefabs.SpawnFile(s.world, name); err != nil {
		log.Printf("server: spawn %s: %v", name, err)
		s.reject(session, "spawn failed")
	}
}

func (s *Server) dropSession(session string) {
	e, ok := s.players[session]
	if !ok {
		return
	}
	delete(s.players, session)
	s.world.DestroyEntity(e)
}

func (s *Server) reject(session, reason string) {
	payload, err := json.Marshal(ErrorMessage{Type: MsgError, Reason: reason})
	if err != nil {
		return
	}
	s.hub.SendTo(session, payload)
}

func (s *Server) reload(name string) {
	log.Printf("server: reloading %s", name)
	s.scripts.Invalidate()
	if isPrefabFile(name) {
		if err := prefabs.Respawn(s.world, filepath.Base(name)); err != nil {
			log.Printf("server: respawn %s: %v", name, err)
		}
	}
}

func isPrefabFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
