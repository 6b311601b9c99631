package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/torchlab/ember/common"
	"github.com/torchlab/ember/config"
	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
	"github.com/torchlab/ember/ecs/system"
	"github.com/torchlab/ember/input"
	"github.com/torchlab/ember/paths"
	"github.com/torchlab/ember/prefabs"
	"github.com/torchlab/ember/res"
	"github.com/torchlab/ember/xlog"
)

var backgroundColor = color.RGBA{R: 24, G: 26, B: 33, A: 255}

// Game drives the fixed-timestep update pipeline and the renderer.
type Game struct {
	cfg   *config.Config
	log   *zap.Logger
	guard *xlog.Guard
	roots paths.Roots

	fac      *ecs.Factory
	cache    *res.Cache
	bank     *soundBank
	poller   *input.Poller
	camera   *Camera
	gameplay *system.Gameplay
	physics  *system.PhysicsSystem
	watcher  *prefabs.Watcher

	boundLevel string
}

func (g *Game) Update() error {
	g.drainWatcher()

	st := g.poller.Poll()
	dt := g.cfg.Engine.FixedDT

	_ = g.guard.Run("gameplay", func() error {
		return g.gameplay.Update(st, dt)
	})
	_ = g.guard.Run("physics", func() error {
		g.physics.Update(dt)
		return nil
	})
	_ = g.guard.Run("factory", func() error {
		g.fac.Update(dt)
		return nil
	})

	g.bindLevelSounds()
	g.updateCamera(dt)
	return nil
}

// bindLevelSounds points logical sound names at the files named by the
// current level's audio components. Runs once per loaded level.
func (g *Game) bindLevelSounds() {
	level := g.fac.LevelPath()
	if level == g.boundLevel {
		return
	}
	g.boundLevel = level
	for _, o := range g.fac.Ordered() {
		au, _ := o.Get(ecs.KindAudio).(*component.Audio)
		if au == nil {
			continue
		}
		for _, e := range au.Entries {
			if e.Name != "" && e.File != "" {
				g.bank.Bind(e.Name, e.File)
			}
		}
	}
}

// drainWatcher rescans the prefab directory after edits on disk. The
// rescan happens at the frame boundary, never mid-update.
func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	dirty := false
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Info("prefab changed", zap.String("path", path))
			dirty = true
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Warn("prefab watcher", zap.Error(err))
		default:
			if dirty {
				dir := g.roots.ResolveData(g.cfg.Dirs.Prefabs)
				if err := g.fac.LoadPrefabDir(dir); err != nil {
					g.log.Warn("prefab reload", zap.Error(err))
				}
			}
			return
		}
	}
}

func (g *Game) updateCamera(dt float64) {
	player := g.gameplay.Player()
	if player == nil {
		return
	}
	tr, _ := player.Get(ecs.KindTransform).(*component.Transform)
	if tr == nil {
		return
	}

	zoom := 1.0
	for _, o := range g.fac.Ordered() {
		zt, _ := o.Get(ecs.KindZoomTrigger).(*component.ZoomTrigger)
		ztr, _ := o.Get(ecs.KindTransform).(*component.Transform)
		if zt == nil || ztr == nil {
			continue
		}
		dx := tr.Pos.X - ztr.Pos.X
		dy := tr.Pos.Y - ztr.Pos.Y
		if dx >= -zt.Width/2 && dx <= zt.Width/2 && dy >= -zt.Height/2 && dy <= zt.Height/2 {
			zoom = zt.Zoom
		}
	}
	g.camera.SetZoomTarget(zoom)
	g.camera.Follow(tr.Pos, dt)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	for _, o := range g.fac.Ordered() {
		if !g.fac.Layers().Enabled(o.Layer()) {
			continue
		}
		tr, _ := o.Get(ecs.KindTransform).(*component.Transform)
		if tr == nil {
			continue
		}
		g.drawQuad(screen, o, tr)
		g.drawCircle(screen, o, tr)
		g.drawSprite(screen, o, tr)
		g.drawAnimation(screen, o, tr)
	}

	g.drawHUD(screen)

	if g.cfg.Engine.Debug {
		stats := g.fac.PoolStats()
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"fps %.0f  objects %d  pages %d  enemies %d",
			ebiten.ActualFPS(), stats.InUse, stats.Pages, g.gameplay.AliveEnemies()))
	}
}

func (g *Game) drawQuad(screen *ebiten.Image, o *ecs.GameObject, tr *component.Transform) {
	r, _ := o.Get(ecs.KindRender).(*component.Render)
	rb, _ := o.Get(ecs.KindRigidBody).(*component.RigidBody)
	if r == nil || !r.Visible || rb == nil {
		return
	}
	x, y := g.camera.WorldToScreen(cp.Vector{X: tr.Pos.X - rb.HalfW, Y: tr.Pos.Y + rb.HalfH})
	s := g.camera.scale()
	vector.DrawFilledRect(screen,
		float32(x), float32(y),
		float32(2*rb.HalfW*s), float32(2*rb.HalfH*s),
		toColor(r.R, r.G, r.B, r.A), false)
}

func (g *Game) drawCircle(screen *ebiten.Image, o *ecs.GameObject, tr *component.Transform) {
	if glow, ok := o.Get(ecs.KindGlow).(*component.Glow); ok && glow != nil {
		x, y := g.camera.WorldToScreen(tr.Pos)
		a := common.Clamp(glow.Intensity, 0, 1) * 0.35
		vector.DrawFilledCircle(screen,
			float32(x), float32(y),
			float32(glow.Radius*g.camera.scale()),
			toColor(glow.R, glow.G, glow.B, a), true)
	}
	if c, ok := o.Get(ecs.KindCircleRender).(*component.CircleRender); ok && c != nil {
		x, y := g.camera.WorldToScreen(tr.Pos)
		vector.DrawFilledCircle(screen,
			float32(x), float32(y),
			float32(c.Radius*g.camera.scale()),
			toColor(c.R, c.G, c.B, c.A), true)
	}
}

func (g *Game) drawSprite(screen *ebiten.Image, o *ecs.GameObject, tr *component.Transform) {
	sp, _ := o.Get(ecs.KindSprite).(*component.Sprite)
	if sp == nil {
		return
	}
	if sp.Img == nil {
		sp.Img = g.cache.Texture(sp.Texture)
		if sp.Img == nil {
			return
		}
	}
	g.blit(screen, sp.Img, tr.Pos, sp.Width, sp.Height, sp.FlipX)
}

func (g *Game) drawAnimation(screen *ebiten.Image, o *ecs.GameObject, tr *component.Transform) {
	anim, _ := o.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation)
	if anim == nil {
		return
	}
	clip := anim.ActiveClip()
	if clip == nil || clip.Sheet == nil {
		return
	}

	w, h := clip.Sheet.Bounds().Dx(), clip.Sheet.Bounds().Dy()
	cols, rows := clip.Columns, clip.Rows
	if cols <= 0 || rows <= 0 {
		return
	}
	cellW, cellH := w/cols, h/rows
	col, row := clip.Cell()
	// Sheet rows are addressed from the bottom.
	row = rows - 1 - row
	frame := clip.Sheet.SubImage(image.Rect(col*cellW, row*cellH, (col+1)*cellW, (row+1)*cellH)).(*ebiten.Image)

	flip := false
	if rb, ok := o.Get(ecs.KindRigidBody).(*component.RigidBody); ok && rb != nil && rb.Vel.X < 0 {
		flip = true
	}
	g.blit(screen, frame, tr.Pos, tr.Scale.X, tr.Scale.Y, flip)
}

// blit draws img centered on a world position at a world-unit size.
func (g *Game) blit(screen, img *ebiten.Image, pos cp.Vector, w, h float64, flipX bool) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 || w <= 0 || h <= 0 {
		return
	}
	s := g.camera.scale()
	sx := w * s / float64(bounds.Dx())
	sy := h * s / float64(bounds.Dy())

	op := &ebiten.DrawImageOptions{}
	if flipX {
		op.GeoM.Scale(-1, 1)
		op.GeoM.Translate(float64(bounds.Dx()), 0)
	}
	op.GeoM.Scale(sx, sy)
	x, y := g.camera.WorldToScreen(cp.Vector{X: pos.X - w/2, Y: pos.Y + h/2})
	op.GeoM.Translate(x, y)
	screen.DrawImage(img, op)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	player := g.gameplay.Player()
	if player == nil {
		return
	}
	hud, _ := player.Get(ecs.KindPlayerHUD).(*component.PlayerHUD)
	ph, _ := player.Get(ecs.KindPlayerHealth).(*component.PlayerHealth)
	if hud == nil || ph == nil {
		return
	}

	heart := g.cache.Texture(hud.HeartTexture)
	for i := 0; i < int(ph.Max); i++ {
		x := float32(12 + i*40)
		if float64(i) >= ph.Current {
			vector.DrawFilledRect(screen, x, 12, 32, 32, color.RGBA{R: 60, G: 60, B: 60, A: 200}, false)
			continue
		}
		if heart == nil {
			vector.DrawFilledRect(screen, x, 12, 32, 32, color.RGBA{R: 200, G: 40, B: 40, A: 255}, false)
			continue
		}
		op := &ebiten.DrawImageOptions{}
		b := heart.Bounds()
		op.GeoM.Scale(32/float64(b.Dx()), 32/float64(b.Dy()))
		op.GeoM.Translate(float64(x), 12)
		screen.DrawImage(heart, op)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.camera.Resize(g.cfg.Window.Width, g.cfg.Window.Height)
	return g.cfg.Window.Width, g.cfg.Window.Height
}

func toColor(r, gr, b, a float64) color.Color {
	return color.RGBA{
		R: uint8(common.Clamp(r, 0, 1) * 255),
		G: uint8(common.Clamp(gr, 0, 1) * 255),
		B: uint8(common.Clamp(b, 0, 1) * 255),
		A: uint8(common.Clamp(a, 0, 1) * 255),
	}
}
