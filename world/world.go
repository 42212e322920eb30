package world

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/game"
	"github.com/oomph-ac/momentum/oerror"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

// Body holds the motion of a kinematic collider. Colliders without a body are static.
type Body struct {
	// Linear is the linear velocity of the body in units per second. World.Tick translates the
	// collider by it.
	Linear mgl32.Vec3
	// Angular is the angular velocity of the body in radians per second. It only describes the
	// velocity of the surface, as seen by PointVelocity: World.Tick never rotates the collider,
	// so it suits conveyors and turntables whose shape is symmetric around Center.
	Angular mgl32.Vec3
	// Center is the point the body rotates around.
	Center mgl32.Vec3
}

// PointVelocity returns the velocity of the body at the world space point passed.
func (b Body) PointVelocity(point mgl32.Vec3) mgl32.Vec3 {
	return b.Linear.Add(b.Angular.Cross(point.Sub(b.Center)))
}

// Entry is a collider registered in a World.
type Entry struct {
	ID       uint64
	Name     string
	Parent   uint64
	Collider Collider
	Body     Body
}

// HasParent returns true if the entry was added as a child of another entry.
func (e Entry) HasParent() bool {
	return e.Parent != 0
}

// World is a registry of colliders that characters move through. It is safe for concurrent use:
// queries take a read lock and return copies of the entries.
type World struct {
	entries *orderedmap.OrderedMap[uint64, Entry]
	log     *logrus.Logger

	deadlock.RWMutex
}

// New returns an empty World.
func New(log *logrus.Logger) *World {
	return &World{
		entries: orderedmap.NewOrderedMap[uint64, Entry](),
		log:     log,
	}
}

// ID returns the identifier of the collider with the name passed.
func ID(name string) uint64 {
	return xxh3.HashString(name)
}

// Add registers a top level collider under the name passed and returns its identifier.
func (w *World) Add(name string, c Collider) (uint64, error) {
	return w.add(name, 0, c)
}

// AddChild registers a collider under the name passed as a child of the parent collider. Children
// move along with their parent and are excluded from casts made on behalf of their ancestors.
func (w *World) AddChild(parent uint64, name string, c Collider) (uint64, error) {
	w.RLock()
	_, ok := w.entries.Get(parent)
	w.RUnlock()
	if !ok {
		return 0, oerror.New(game.ErrorColliderNotFound, parent)
	}
	return w.add(name, parent, c)
}

func (w *World) add(name string, parent uint64, c Collider) (uint64, error) {
	if c == nil {
		return 0, oerror.Configuration(game.ErrorNilCollider, name)
	}
	id := ID(name)

	w.Lock()
	defer w.Unlock()
	if _, ok := w.entries.Get(id); ok {
		return 0, oerror.New(game.ErrorDuplicateCollider, name)
	}
	w.entries.Set(id, Entry{ID: id, Name: name, Parent: parent, Collider: c})
	if w.log != nil {
		w.log.Debugf("added collider %q (%T) to world", name, c)
	}
	return id, nil
}

// Remove removes the collider with the identifier passed. Children of the collider are kept, but
// become top level colliders.
func (w *World) Remove(id uint64) bool {
	w.Lock()
	defer w.Unlock()

	if !w.entries.Delete(id) {
		return false
	}
	for el := w.entries.Front(); el != nil; el = el.Next() {
		if el.Value.Parent == id {
			e := el.Value
			e.Parent = 0
			w.entries.Set(el.Key, e)
		}
	}
	return true
}

// Set replaces the shape of the collider with the identifier passed.
func (w *World) Set(id uint64, c Collider) error {
	if c == nil {
		return oerror.Configuration(game.ErrorNilCollider, id)
	}

	w.Lock()
	defer w.Unlock()
	e, ok := w.entries.Get(id)
	if !ok {
		return oerror.New(game.ErrorColliderNotFound, id)
	}
	e.Collider = c
	w.entries.Set(id, e)
	return nil
}

// SetBody replaces the body of the collider with the identifier passed.
func (w *World) SetBody(id uint64, b Body) error {
	w.Lock()
	defer w.Unlock()
	e, ok := w.entries.Get(id)
	if !ok {
		return oerror.New(game.ErrorColliderNotFound, id)
	}
	e.Body = b
	w.entries.Set(id, e)
	return nil
}

// Collider returns the entry with the identifier passed.
func (w *World) Collider(id uint64) (Entry, bool) {
	w.RLock()
	defer w.RUnlock()
	return w.entries.Get(id)
}

// Colliders appends every entry whose bounds intersect the area passed to dst, in the order they
// were added, and returns the extended slice. The linear velocity of each returned body includes
// the velocity inherited from its ancestors.
func (w *World) Colliders(area cube.BBox, dst []Entry) []Entry {
	w.RLock()
	defer w.RUnlock()

	for el := w.entries.Front(); el != nil; el = el.Next() {
		if !el.Value.Collider.Bounds().IntersectsWith(area) {
			continue
		}
		e := el.Value
		e.Body.Linear = w.inheritedVelocity(e)
		dst = append(dst, e)
	}
	return dst
}

// IsDescendant returns true if the collider id is a descendant of ancestor.
func (w *World) IsDescendant(id, ancestor uint64) bool {
	w.RLock()
	defer w.RUnlock()

	// The depth is bounded by the amount of entries, which guards against cycles.
	for i := 0; i < w.entries.Len(); i++ {
		e, ok := w.entries.Get(id)
		if !ok || e.Parent == 0 {
			return false
		}
		if e.Parent == ancestor {
			return true
		}
		id = e.Parent
	}
	return false
}

// Len returns the amount of colliders in the world.
func (w *World) Len() int {
	w.RLock()
	defer w.RUnlock()
	return w.entries.Len()
}

// Tick moves every collider with a linear velocity by its velocity over dt seconds. Children are
// moved along with their parents, adding their own velocity on top.
func (w *World) Tick(dt float32) {
	if dt <= 0 {
		return
	}

	w.Lock()
	defer w.Unlock()

	for el := w.entries.Front(); el != nil; el = el.Next() {
		offset := w.inheritedVelocity(el.Value).Mul(dt)
		if offset == (mgl32.Vec3{}) {
			continue
		}
		e := el.Value
		e.Collider = e.Collider.Translate(offset)
		e.Body.Center = e.Body.Center.Add(offset)
		w.entries.Set(el.Key, e)
	}
}

// inheritedVelocity returns the linear velocity of the entry summed with that of its ancestors.
func (w *World) inheritedVelocity(e Entry) mgl32.Vec3 {
	vel := e.Body.Linear
	for i := 0; e.Parent != 0 && i < w.entries.Len(); i++ {
		parent, ok := w.entries.Get(e.Parent)
		if !ok {
			break
		}
		vel = vel.Add(parent.Body.Linear)
		e = parent
	}
	return vel
}
