// Command boardpng renders a board matrix to a PNG with the client's
// renderer and theme.
//
//	boardpng -in board.json -out board.png -size 480
//
// board.json holds a JSON matrix such as a "board" message's data. Without
// -in the standard starting position is drawn. -json also writes the board
// as the "board" message a server would send.
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/reversi-lobby/internal/board"
	"github.com/vancomm/reversi-lobby/internal/protocol"
	"github.com/vancomm/reversi-lobby/internal/surface"
)

var log = logrus.New()

func main() {
	var (
		in        = flag.String("in", "", "JSON matrix file (default: starting position)")
		out       = flag.String("out", "board.png", "output PNG path")
		size      = flag.Int("size", 480, "image edge in pixels")
		lineWidth = flag.Float64("line", 1, "separator width in pixels")
		jsonOut   = flag.String("json", "", "also write the board message JSON here")
	)
	flag.Parse()
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	grid := board.StartingGrid()
	if *in != "" {
		data, err := os.ReadFile(*in)
		if err != nil {
			log.Fatal("unable to read matrix: ", err)
		}
		m := protocol.Message{Cmd: protocol.TagBoard, Data: json.RawMessage(data)}
		if grid, err = m.Grid(); err != nil {
			log.Fatal("unable to decode matrix: ", err)
		}
	}
	if *size <= 0 {
		log.Fatalf("size must be positive, got %d", *size)
	}

	theme := board.DefaultTheme()
	theme.LineWidth = *lineWidth

	r := surface.NewRaster(*size, *size)
	stats := board.Render(r, grid, theme)
	if err := r.SavePNG(*out); err != nil {
		log.Fatal("unable to write png: ", err)
	}

	if *jsonOut != "" {
		msg, err := protocol.BoardMessage(protocol.TagBoard, grid)
		if err != nil {
			log.Fatal("unable to encode board: ", err)
		}
		data, err := json.Marshal(msg)
		if err != nil {
			log.Fatal("unable to encode board: ", err)
		}
		if err := os.WriteFile(*jsonOut, data, 0o644); err != nil {
			log.Fatal("unable to write board message: ", err)
		}
	}

	log.WithFields(logrus.Fields{
		"out":       *out,
		"cols":      grid.Cols(),
		"rows":      grid.Rows(),
		"tokens":    stats.Tokens,
		"anomalies": stats.Anomalies,
	}).Info("board rendered")
}
