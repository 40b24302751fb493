package desktop

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	backgroundFile = "desert.png"
	crosshairFile  = "aim.png"
	heroFile       = "hero.png"
	evilFile       = "evil.png"
)

// Sprites are the optional textures. A nil *Sprites draws placeholders.
type Sprites struct {
	Background *ebiten.Image
	Crosshair  *ebiten.Image
	Hero       *ebiten.Image
	Evil       *ebiten.Image
}

// LoadSprites reads every texture from dir. Any missing or undecodable
// file fails the whole load.
func LoadSprites(dir string) (*Sprites, error) {
	var s Sprites
	for _, f := range []struct {
		name string
		dst  **ebiten.Image
	}{
		{backgroundFile, &s.Background},
		{crosshairFile, &s.Crosshair},
		{heroFile, &s.Hero},
		{evilFile, &s.Evil},
	} {
		img, err := decodePNG(filepath.Join(dir, f.name))
		if err != nil {
			return nil, err
		}
		*f.dst = ebiten.NewImageFromImage(img)
	}
	return &s, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sprite: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding sprite %s: %w", path, err)
	}
	return img, nil
}
