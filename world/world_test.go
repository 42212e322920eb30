package world

import (
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/oerror"
	"github.com/sirupsen/logrus"
)

func TestAddDuplicate(t *testing.T) {
	w := New(logrus.New())
	id, err := w.Add("floor", NewPlane(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != ID("floor") {
		t.Fatalf("expected id to be derived from the name")
	}
	if _, err := w.Add("floor", Sphere{Radius: 1}); err == nil {
		t.Fatalf("expected adding a duplicate name to fail")
	}
	if _, err := w.Add("nothing", nil); !oerror.IsKind(err, oerror.KindConfiguration) {
		t.Fatalf("expected a configuration error for a nil collider, got %v", err)
	}
	if w.Len() != 1 {
		t.Fatalf("expected 1 collider, got %d", w.Len())
	}
}

func TestDescendants(t *testing.T) {
	w := New(nil)
	body, _ := w.Add("body", Capsule{Radius: 0.3, Height: 1.8, Direction: AxisY})
	arm, err := w.AddChild(body, "arm", Sphere{Radius: 0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hand, _ := w.AddChild(arm, "hand", Sphere{Radius: 0.05})
	other, _ := w.Add("other", Sphere{Radius: 1})

	if _, err := w.AddChild(12345, "orphan", Sphere{Radius: 1}); err == nil {
		t.Fatalf("expected adding a child to a missing parent to fail")
	}
	if !w.IsDescendant(arm, body) || !w.IsDescendant(hand, body) || !w.IsDescendant(hand, arm) {
		t.Fatalf("expected arm and hand to descend from body")
	}
	if w.IsDescendant(body, body) || w.IsDescendant(other, body) || w.IsDescendant(body, hand) {
		t.Fatalf("unexpected descendant relation")
	}

	if !w.Remove(arm) {
		t.Fatalf("expected arm to be removed")
	}
	if w.IsDescendant(hand, body) {
		t.Fatalf("expected hand to become a top level collider once its parent was removed")
	}
	if w.Remove(arm) {
		t.Fatalf("expected removing a missing collider to fail")
	}
}

func TestCollidersInArea(t *testing.T) {
	w := New(nil)
	a, _ := w.Add("a", NewBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}))
	w.Add("b", NewBox(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{6, 6, 6}))
	c, _ := w.Add("c", Sphere{Center: mgl32.Vec3{1.5, 0.5, 0.5}, Radius: 0.5})

	entries := w.Colliders(cube.Box(-1, -1, -1, 2, 2, 2), nil)
	if len(entries) != 2 {
		t.Fatalf("expected 2 colliders, got %d", len(entries))
	}
	if entries[0].ID != a || entries[1].ID != c {
		t.Fatalf("expected colliders in the order they were added")
	}
}

func TestSetAndSetBody(t *testing.T) {
	w := New(nil)
	id, _ := w.Add("platform", NewBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}))

	if err := w.Set(id, NewBox(mgl32.Vec3{}, mgl32.Vec3{2, 1, 1})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Set(42, Sphere{}); err == nil {
		t.Fatalf("expected setting a missing collider to fail")
	}
	if err := w.Set(id, nil); !oerror.IsKind(err, oerror.KindConfiguration) {
		t.Fatalf("expected a configuration error for a nil collider, got %v", err)
	}
	if err := w.SetBody(42, Body{}); err == nil {
		t.Fatalf("expected setting the body of a missing collider to fail")
	}
	if err := w.SetBody(id, Body{Linear: mgl32.Vec3{1, 0, 0}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, ok := w.Collider(id)
	if !ok || e.Body.Linear != (mgl32.Vec3{1, 0, 0}) || e.Collider.Bounds().Max().X() != 2 {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestTickAngularOnlyMovesSurface(t *testing.T) {
	w := New(nil)
	turntable, _ := w.Add("turntable", NewBox(mgl32.Vec3{-1, 0, -1}, mgl32.Vec3{1, 0.2, 1}))
	w.SetBody(turntable, Body{Angular: mgl32.Vec3{0, 1, 0}})

	w.Tick(1)
	e, _ := w.Collider(turntable)
	if b := e.Collider.Bounds(); b.Min() != (mgl32.Vec3{-1, 0, -1}) || b.Max() != (mgl32.Vec3{1, 0.2, 1}) {
		t.Fatalf("expected a purely rotating body to keep its geometry, got %v", b)
	}
	if v := e.Body.PointVelocity(mgl32.Vec3{1, 0.2, 0}); !v.ApproxEqual(mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("expected the surface to move at (0, 0, -1), got %v", v)
	}
}

func TestTick(t *testing.T) {
	w := New(nil)
	platform, _ := w.Add("platform", NewBox(mgl32.Vec3{}, mgl32.Vec3{2, 0.5, 2}))
	w.SetBody(platform, Body{Linear: mgl32.Vec3{1, 0, 0}, Center: mgl32.Vec3{1, 0.25, 1}})
	crate, _ := w.AddChild(platform, "crate", NewBox(mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{0.5, 1, 0.5}))
	static, _ := w.Add("static", Sphere{Center: mgl32.Vec3{5, 0, 0}, Radius: 1})

	w.Tick(0.5)
	w.Tick(-1)

	e, _ := w.Collider(platform)
	if min := e.Collider.Bounds().Min(); min != (mgl32.Vec3{0.5, 0, 0}) {
		t.Fatalf("expected platform to move by 0.5, got %v", min)
	}
	if e.Body.Center != (mgl32.Vec3{1.5, 0.25, 1}) {
		t.Fatalf("expected the centre of the body to move along, got %v", e.Body.Center)
	}
	e, _ = w.Collider(crate)
	if min := e.Collider.Bounds().Min(); min != (mgl32.Vec3{0.5, 0.5, 0}) {
		t.Fatalf("expected crate to move with its parent, got %v", min)
	}
	e, _ = w.Collider(static)
	if e.Collider.(Sphere).Center != (mgl32.Vec3{5, 0, 0}) {
		t.Fatalf("expected static collider not to move")
	}

	entries := w.Colliders(cube.Box(0, 0.5, 0, 1, 1, 1), nil)
	for _, entry := range entries {
		if entry.ID == crate && entry.Body.Linear != (mgl32.Vec3{1, 0, 0}) {
			t.Fatalf("expected crate to inherit the velocity of its parent, got %v", entry.Body.Linear)
		}
	}
}

func TestPointVelocity(t *testing.T) {
	b := Body{Linear: mgl32.Vec3{1, 0, 0}, Angular: mgl32.Vec3{0, 1, 0}, Center: mgl32.Vec3{0, 0, 0}}
	// (0, 1, 0) x (0, 0, 1) = (1, 0, 0)
	if v := b.PointVelocity(mgl32.Vec3{0, 0, 1}); v != (mgl32.Vec3{2, 0, 0}) {
		t.Fatalf("expected (2, 0, 0), got %v", v)
	}
}
