// Copyright 2016 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/metalblueberry/bard-tuner/internal/cli"
	"github.com/metalblueberry/bard-tuner/pkg/circular"
	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

const (
	screenWidth  = 640
	screenHeight = 480

	// Frames of cents history drawn below the needle.
	historyLength = 240

	// Needle deflection at +/-50 cents.
	maxDeflection = math.Pi / 4
)

var errStreamEnded = errors.New("audio stream ended")

type Game struct {
	ctx     context.Context
	engine  *tuner.Engine
	state   tuner.State
	history *circular.Buffer[float64]
	buff    []float64

	vertices []ebiten.Vertex
	indices  []uint16
}

func newGame(ctx context.Context, engine *tuner.Engine) *Game {
	return &Game{
		ctx:     ctx,
		engine:  engine,
		state:   tuner.InitialState(),
		history: circular.CreateBuffer[float64](historyLength),
		buff:    make([]float64, historyLength),
	}
}

func (g *Game) Update() error {

	select {
	case <-g.engine.Done():
		return errStreamEnded
	default:
	}

	g.state = g.engine.CurrentState()
	g.history.Enqueue(g.state.Cents)
	return g.ctx.Err()
}

func (g *Game) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, cli.Line(g.state))

	up := screen.SubImage(image.Rect(0, 0, screen.Bounds().Dx(), screen.Bounds().Dy()/2)).(*ebiten.Image)
	down := screen.SubImage(image.Rect(0, screen.Bounds().Dy()/2, screen.Bounds().Dx(), screen.Bounds().Dy())).(*ebiten.Image)
	g.drawNeedle(up)

	if err := g.history.Retrieve(g.buff); err != nil {
		return
	}

	g.drawWave(down, g.buff, 50)
}

var (
	whiteImage = ebiten.NewImage(3, 3)

	// whiteSubImage is an internal sub image of whiteImage.
	// Use whiteSubImage at DrawTriangles instead of whiteImage in order to avoid bleeding edges.
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)

	scaleColor  = color.RGBA{0x60, 0x60, 0x60, 0xff}
	inTuneColor = color.RGBA{0x40, 0xe0, 0x40, 0xff}
	offColor    = color.RGBA{0xe0, 0x40, 0x40, 0xff}
)

func init() {
	whiteImage.Fill(color.White)
}

/*
 * Draws the gauge: a centre mark, the +/-50 cent limits and a needle
 * deflected by the smoothed deviation.
 */
func (g *Game) drawNeedle(screen *ebiten.Image) {
	b := screen.Bounds()
	pivotX := float64(b.Min.X + b.Dx()/2)
	pivotY := float64(b.Max.Y - 10)
	length := float64(b.Dy()) * 0.8

	for _, cents := range []float64{-50, 0, 50} {
		x, y := needleTip(pivotX, pivotY, length, cents)
		var path vector.Path
		path.MoveTo(float32(pivotX), float32(pivotY))
		path.LineTo(float32(x), float32(y))
		g.stroke(screen, &path, 1, scaleColor)
	}

	if g.state.Note == tuner.NoNote {
		return
	}

	c := offColor

	switch {
	case !g.state.Tracking:
		c = scaleColor
	case math.Abs(g.state.Cents) < 5:
		c = inTuneColor
	}

	x, y := needleTip(pivotX, pivotY, length, g.state.Cents)
	var path vector.Path
	path.MoveTo(float32(pivotX), float32(pivotY))
	path.LineTo(float32(x), float32(y))
	g.stroke(screen, &path, 3, c)
}

func (g *Game) drawWave(screen *ebiten.Image, data []float64, size float64) {
	var path vector.Path
	mid := screen.Bounds().Min.Y + screen.Bounds().Dy()/2
	width := screen.Bounds().Dx()

	path.MoveTo(0, float32(mid))

	scale := float64(screen.Bounds().Dy()/2) / size
	for i := range data {
		y := float32(float64(mid) - data[i]*scale)
		path.LineTo(float32(i*width)/float32(len(data)), y)
	}

	g.stroke(screen, &path, 1, color.White)
}

func (g *Game) stroke(screen *ebiten.Image, path *vector.Path, width float32, c color.Color) {
	op := &vector.StrokeOptions{}
	op.Width = width
	r, gr, b, a := c.RGBA()
	vs, is := path.AppendVerticesAndIndicesForStroke(g.vertices[:0], g.indices[:0], op)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(r) / 0xffff
		vs[i].ColorG = float32(gr) / 0xffff
		vs[i].ColorB = float32(b) / 0xffff
		vs[i].ColorA = float32(a) / 0xffff
	}
	screen.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
	g.vertices, g.indices = vs, is
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

/*
 * Returns the needle tip for a deviation, clamped to the gauge limits.
 */
func needleTip(pivotX, pivotY, length, cents float64) (float64, float64) {
	cents = math.Max(-50, math.Min(50, cents))
	angle := cents / 50 * maxDeflection
	return pivotX + length*math.Sin(angle), pivotY - length*math.Cos(angle)
}

func main() {
	flags := cli.Register(flag.CommandLine)
	flag.Parse()

	ctx, done := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		log.Println("done")
		done()
		<-time.After(5 * time.Second)
		log.Println("TIMEOUT")
		os.Exit(1)
	}()
	log.Println("init")

	engine, _, err := flags.NewEngine()
	chk(err)
	chk(engine.Start(ctx))
	defer engine.Stop()

	log.Println("ready")
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Tuner")

	err = ebiten.RunGame(newGame(ctx, engine))

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Println(err)
	}

}

func chk(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
