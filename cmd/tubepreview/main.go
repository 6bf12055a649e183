// Tube network preview tool - interactive 3D view with sliders.
//
// Usage: go run ./cmd/tubepreview [-config path]
package main

import (
	"flag"
	"fmt"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/microtubule/camera"
	"github.com/pthm-cable/microtubule/config"
	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

const (
	windowWidth  = 1200
	windowHeight = 760
	viewWidth    = 760
	panelWidth   = windowWidth - viewWidth - 30
)

var tubeColors = []rl.Color{rl.Red, rl.Orange, rl.Gold, rl.Lime, rl.SkyBlue, rl.Purple, rl.Pink, rl.Brown}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Tube Network Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	cam := camera.New(20)

	params := defaultParams(cfg)
	sc := buildScene(cfg, params)
	needsRegen := false
	orbit := true
	showOverlaps := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			sc = buildScene(cfg, params)
			needsRegen = false
		}
		if orbit {
			cam.Update(rl.GetFrameTime())
		}
		mouse := rl.GetMousePosition()
		if mouse.X < viewWidth {
			if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
				delta := rl.GetMouseDelta()
				cam.Rotate(delta.X, delta.Y, 0.01)
			}
			if wheel := rl.GetMouseWheelMove(); wheel != 0 {
				cam.ZoomBy(1 + 0.1*wheel)
			}
		}
		if rl.IsKeyPressed(rl.KeyR) {
			cam.Reset()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.BeginScissorMode(0, 0, viewWidth, windowHeight)
		rl.BeginMode3D(view3D(cam))
		rl.DrawGrid(20, 1)
		drawScene(sc, showOverlaps)
		rl.EndMode3D()
		rl.EndScissorMode()
		rl.DrawRectangleLines(0, 0, viewWidth, windowHeight, rl.DarkGray)

		// Stats
		statsY := int32(windowHeight - 70)
		if sc.err != nil {
			rl.DrawText(sc.err.Error(), 15, statsY, 16, rl.Maroon)
		} else {
			rl.DrawText(fmt.Sprintf("Tubes: %d  Segments: %d  Entropy: %.3f  Crossings: %d",
				sc.net.NumTubes(), sc.net.Len(), sc.net.Entropy(), len(sc.overlaps)), 15, statsY, 16, rl.DarkGray)
		}
		if sc.result != nil {
			r := sc.result
			rl.DrawText(fmt.Sprintf("Motor: %s  elapsed %.4f  steps %d  binds %d",
				r.State, r.Elapsed, r.Steps, r.Binds), 15, statsY+20, 16, rl.DarkGray)
		}

		// Control panel
		panelX := float32(viewWidth + 20)
		panelY := float32(10)

		rl.DrawText("Network Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Persistence length (stiffness)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newLp := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"5", "2000",
			params.PersistenceLength, 5, 2000,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.PersistenceLength), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newLp != params.PersistenceLength {
			params.PersistenceLength = newLp
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Segments per tube", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSpt := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "50",
			float32(params.SegmentsPerTube), 1, 50,
		)
		rl.DrawText(fmt.Sprintf("%d", params.SegmentsPerTube), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newSpt) != params.SegmentsPerTube {
			params.SegmentsPerTube = int(newSpt)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Density (segments per unit volume)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newDensity := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "40",
			params.Density, 1, 40,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.Density), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newDensity != params.Density {
			params.Density = newDensity
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Binding radius", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRadius := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "60",
			params.BindingRadius, 1, 60,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.BindingRadius), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newRadius != params.BindingRadius {
			params.BindingRadius = newRadius
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Seed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "99999",
			float32(params.Seed), 0, 99999,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Seed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if uint32(newSeed) != params.Seed {
			params.Seed = uint32(newSeed)
			needsRegen = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Run Motor") {
			sc.runTransport(params)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, toggleText(orbit, "Stop Orbit", "Orbit")) {
			orbit = !orbit
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = uint32(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams(cfg)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 250, Height: 30}, toggleText(showOverlaps, "Hide Crossings", "Show Crossings")) {
			showOverlaps = !showOverlaps
		}
		panelY += 45

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := previewYAML(params)
		for _, line := range yaml {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Drag to rotate, wheel to zoom, R to reset view", 15, 10, 14, rl.Gray)
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			text := ""
			for _, line := range yaml {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func previewYAML(p PreviewParams) []string {
	return []string{
		"network:",
		fmt.Sprintf("  persistence_length: %.1f", p.PersistenceLength),
		fmt.Sprintf("  segments_per_tube: %d", p.SegmentsPerTube),
		fmt.Sprintf("  density: %.2f", p.Density),
		"motor:",
		fmt.Sprintf("  binding_radius: %.2f", p.BindingRadius),
	}
}

func view3D(cam *camera.Camera) rl.Camera3D {
	x, y, z := cam.Position()
	return rl.Camera3D{
		Position:   rl.NewVector3(x, y, z),
		Target:     rl.NewVector3(cam.TargetX, cam.TargetY, cam.TargetZ),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func (s *scene) vec(p geom.Point) rl.Vector3 {
	x, y, z := s.toView(p)
	return rl.NewVector3(x, y, z)
}

func drawScene(s *scene, showOverlaps bool) {
	if s.net == nil {
		return
	}
	for t := 0; t < s.net.NumTubes(); t++ {
		c := tubeColors[t%len(tubeColors)]
		for _, seg := range s.net.Tube(network.TubeIndex(t)) {
			rl.DrawLine3D(s.vec(seg.Start), s.vec(seg.End), c)
		}
	}
	if showOverlaps {
		for _, p := range s.overlaps {
			rl.DrawSphere(s.vec(p), 0.06, rl.DarkBlue)
		}
	}
	for i := 1; i < len(s.trajectory); i++ {
		rl.DrawLine3D(s.vec(s.trajectory[i-1]), s.vec(s.trajectory[i]), rl.Black)
	}
	if n := len(s.trajectory); n > 0 {
		rl.DrawSphere(s.vec(s.trajectory[0]), 0.1, rl.Green)
		rl.DrawSphere(s.vec(s.trajectory[n-1]), 0.1, rl.Maroon)
	}

	dest := s.cfg.Destination.Box()
	size := dest.Size()
	mid := geom.Pt((dest.Min.X+dest.Max.X)/2, (dest.Min.Y+dest.Max.Y)/2, (dest.Min.Z+dest.Max.Z)/2)
	rl.DrawCubeWiresV(s.vec(mid), rl.NewVector3(
		float32(size.X/s.scale), float32(size.Y/s.scale), float32(size.Z/s.scale)), rl.DarkGreen)
}
