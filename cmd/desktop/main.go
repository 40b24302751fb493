package main

import (
	"fiestapinata/internal/config"
	"fiestapinata/internal/desktop"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var assets string
	var scale int
	flag.StringVar(&assets, "assets", "", "directory holding desert.png, aim.png, hero.png and evil.png")
	flag.IntVar(&scale, "scale", 2, "window scale factor")
	flag.Parse()

	appCfg := config.Load()

	var sprites *desktop.Sprites
	if assets != "" {
		var err error
		sprites, err = desktop.LoadSprites(assets)
		if err != nil {
			log.Fatal(err)
		}
	}

	ebiten.SetTPS(appCfg.TickRate)
	ebiten.SetWindowTitle("Fiesta Pinata")
	ebiten.SetWindowSize(appCfg.WindowWidth*scale, appCfg.WindowHeight*scale)
	ebiten.SetCursorMode(ebiten.CursorModeHidden)
	if err := ebiten.RunGame(desktop.New(appCfg.Game(), appCfg.FixedStep(), sprites)); err != nil {
		log.Fatal(err)
	}
}
