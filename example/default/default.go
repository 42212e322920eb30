package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/event"
	"github.com/oomph-ac/momentum/hull"
	"github.com/oomph-ac/momentum/settings"
	"github.com/oomph-ac/momentum/simulation"
	"github.com/oomph-ac/momentum/world"
	"github.com/sirupsen/logrus"
)

const hullCount = 8

// The following program simulates a few hulls wandering around a small level, recording their
// events to a file.
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ./bin <settings_path> <events_path>")
		return
	}
	settingsPath, eventsPath := os.Args[1], os.Args[2]

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := settings.SaveDefault(settingsPath); err != nil {
			panic(err)
		}
	}
	s, err := settings.Load(settingsPath)
	if err != nil {
		panic(err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	logger.SetLevel(s.LogLevel())

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			logger.Errorf("failed initialising sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	f, err := os.OpenFile(eventsPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	recorder := event.NewRecorder(f)

	w := buildLevel(logger)
	runner := simulation.NewRunner(logger, w, s.Simulation)
	runner.Record(recorder)

	events := make(chan event.Event, 256)
	hulls := make([]*hull.Hull, 0, hullCount)
	for i := 0; i < hullCount; i++ {
		name := fmt.Sprintf("hull-%d", i)
		id, err := w.Add(name, world.Capsule{
			Position:  mgl32.Vec3{float32(i%4)*2 - 3, 0, float32(i/4)*2 - 1},
			Radius:    s.Hull.Width / 2,
			Height:    s.Hull.Height,
			Direction: world.AxisY,
		})
		if err != nil {
			panic(err)
		}
		h, err := hull.New(logger, w, id, s.Hull)
		if err != nil {
			panic(err)
		}
		h.Handle(event.NewChannelHandler(id, events, nil))
		h.SetWishDirection(mgl32.Vec3{0, 0, 1})
		h.SetViewAngles(mgl32.Vec2{float32(i) * 360 / hullCount, 0})
		if err := runner.Add(h); err != nil {
			panic(err)
		}
		hulls = append(hulls, h)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				if land, ok := ev.(event.LandEvent); ok {
					logger.Debugf("hull %d landed at %.2f m/s", land.Hull, land.Speed)
				}
				if err := recorder.Record(ev); err != nil {
					logger.Errorf("failed recording event: %v", err)
				}
			}
		}
	}()
	go steer(ctx, runner, hulls)

	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("simulation stopped: %v", err)
	}
	stats := runner.Stats()
	logger.Infof("%d ticks, %v mean, %v max, %d events recorded", stats.Ticks, stats.Mean, stats.Max, recorder.Count())
}

// buildLevel creates a walled room with a few steps, a ramp and a moving platform.
func buildLevel(logger *logrus.Logger) *world.World {
	w := world.New(logger)
	colliders := map[string]world.Collider{
		"floor":      world.NewPlane(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}),
		"wall-north": world.NewPlane(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 10}),
		"wall-south": world.NewPlane(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, -10}),
		"wall-east":  world.NewPlane(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{10, 0, 0}),
		"wall-west":  world.NewPlane(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{-10, 0, 0}),
		"step-1":     world.NewBox(mgl32.Vec3{-6, 0, 4}, mgl32.Vec3{-2, 0.2, 10}),
		"step-2":     world.NewBox(mgl32.Vec3{-6, 0, 6}, mgl32.Vec3{-2, 0.4, 10}),
		"boulder":    world.Sphere{Center: mgl32.Vec3{5, 0, -5}, Radius: 1.5},
		"pillar":     world.Capsule{Position: mgl32.Vec3{0, 0, 5}, Radius: 0.5, Height: 4, Direction: world.AxisY},
	}
	for name, c := range colliders {
		if _, err := w.Add(name, c); err != nil {
			panic(err)
		}
	}
	ramp, _ := w.Add("ramp", world.NewPlane(mgl32.Vec3{-0.5, 0.866, 0}, mgl32.Vec3{6, 0, 0}))
	platform, _ := w.Add("platform", world.NewBox(mgl32.Vec3{2, 0, -8}, mgl32.Vec3{4, 0.25, -6}))
	w.SetBody(platform, world.Body{Linear: mgl32.Vec3{0.5, 0, 0}})
	logger.Debugf("built level with %d colliders, ramp %d", w.Len(), ramp)
	return w
}

// steer turns the hulls and makes them jump every now and then.
func steer(ctx context.Context, runner *simulation.Runner, hulls []*hull.Hull) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		runner.Lock()
		for j, h := range hulls {
			angles := h.ViewAngles()
			angles[0] += 35
			h.SetViewAngles(angles)
			h.SetSprintFactor(float32((i + j) % 2))
			if (i+j)%3 == 0 {
				h.Jump()
			}
		}
		runner.Unlock()
	}
}
