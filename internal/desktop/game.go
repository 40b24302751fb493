package desktop

import (
	"fiestapinata/internal/gamedata"
	"fiestapinata/internal/targets"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var (
	sandColor = color.RGBA{R: 217, G: 178, B: 111, A: 255}
	heroColor = color.RGBA{R: 63, G: 163, B: 77, A: 255}
	evilColor = color.RGBA{R: 192, G: 57, B: 43, A: 255}
	aimColor  = color.RGBA{R: 255, G: 255, B: 255, A: 230}
	hudColor  = color.RGBA{R: 43, G: 29, B: 14, A: 255}
)

const hudPadding = 4

// input is one frame's worth of player intent, decoupled from ebiten so
// the game logic can be driven directly.
type input struct {
	X, Y    float64
	Click   bool
	Restart bool
}

// Game is the ebiten shell around a session. Ebiten calls Update at a
// fixed TPS, so every update advances the session by the same dt, which
// should be 1/TPS.
type Game struct {
	session *gamedata.Session
	sprites *Sprites
	dt      float64
	pointer targets.Vec2
	tally   int
	hits    int
}

func New(cfg gamedata.Config, dt float64, sprites *Sprites) *Game {
	if dt <= 0 {
		dt = 1 / float64(ebiten.DefaultTPS)
	}
	return &Game{
		session: gamedata.NewSession(cfg, nil),
		sprites: sprites,
		dt:      dt,
		pointer: targets.Vec2{X: cfg.Width / 2, Y: cfg.Height / 2},
	}
}

func (g *Game) Update() error {
	x, y := ebiten.CursorPosition()
	g.step(input{
		X:       float64(x),
		Y:       float64(y),
		Click:   inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Restart: inpututil.IsKeyJustPressed(ebiten.KeyR),
	})
	return nil
}

// step applies input then advances the session by one tick.
func (g *Game) step(in input) {
	if in.Restart {
		g.session.Reset()
		g.tally = 0
		g.hits = 0
	}

	g.pointer = targets.Vec2{X: in.X, Y: in.Y}
	g.session.MoveCursor(in.X, in.Y)
	if in.Click {
		for _, h := range g.session.Click() {
			g.tally += int(h.Target.Reward)
			g.hits++
		}
	}

	g.session.Update(g.dt)
}

func (g *Game) Draw(screen *ebiten.Image) {
	f := g.session.Snapshot()

	g.drawBackground(screen)
	for _, t := range f.Hero {
		g.drawTarget(screen, t, f.Bias)
	}
	for _, t := range f.Evil {
		g.drawTarget(screen, t, f.Bias)
	}
	g.drawCrosshair(screen, f.Bias)
	g.drawHUD(screen, f)
}

func (g *Game) Layout(_, _ int) (int, int) {
	cfg := g.session.Config()
	return int(cfg.Width), int(cfg.Height)
}

func (g *Game) drawBackground(screen *ebiten.Image) {
	if g.sprites == nil {
		screen.Fill(sandColor)
		return
	}
	cfg := g.session.Config()
	drawScaled(screen, g.sprites.Background, 0, 0, cfg.Width, cfg.Height)
}

// drawTarget draws t shifted back by the bias so the sprite sits where the
// crosshair appears to hit it.
func (g *Game) drawTarget(screen *ebiten.Image, t targets.Target, bias float64) {
	x, y := t.Position.X-bias, t.Position.Y-bias
	if g.sprites == nil {
		clr := heroColor
		if t.Kind == targets.KindEvil {
			clr = evilColor
		}
		vector.FillRect(screen, float32(x), float32(y), float32(t.Size.X), float32(t.Size.Y), clr, false)
		return
	}
	img := g.sprites.Hero
	if t.Kind == targets.KindEvil {
		img = g.sprites.Evil
	}
	drawScaled(screen, img, x, y, t.Size.X, t.Size.Y)
}

func (g *Game) drawCrosshair(screen *ebiten.Image, bias float64) {
	px, py := g.pointer.X, g.pointer.Y
	if g.sprites != nil {
		drawScaled(screen, g.sprites.Crosshair, px-bias, py-bias, 2*bias, 2*bias)
		return
	}
	cx, cy, r := float32(px), float32(py), float32(bias)
	vector.StrokeCircle(screen, cx, cy, r*0.6, 1.5, aimColor, true)
	vector.StrokeLine(screen, cx-r, cy, cx+r, cy, 1, aimColor, false)
	vector.StrokeLine(screen, cx, cy-r, cx, cy+r, 1, aimColor, false)
}

func (g *Game) drawHUD(screen *ebiten.Image, f gamedata.Frame) {
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	lines := []string{
		fmt.Sprintf("score %d  hits %d", g.tally, g.hits),
		fmt.Sprintf("time %.1fs  [R] restart", f.Clock),
	}
	for i, line := range lines {
		text.Draw(screen, line, face, hudPadding, hudPadding+lineH*(i+1), hudColor)
	}
}

func drawScaled(dst, img *ebiten.Image, x, y, w, h float64) {
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(x, y)
	dst.DrawImage(img, op)
}
