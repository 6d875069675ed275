package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine runs a local Tesseract install through gosseract.
type TesseractEngine struct {
	languages []string
}

var _ Engine = (*TesseractEngine)(nil)

// NewTesseractEngine returns an engine for the given languages ("eng" when empty).
func NewTesseractEngine(languages ...string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractEngine{languages: languages}
}

func (t *TesseractEngine) Name() string { return "tesseract" }

// Recognize uses a fresh client per call; gosseract clients are not safe to share.
func (t *TesseractEngine) Recognize(ctx context.Context, img image.Image) (Result, error) {
	if img == nil {
		return Result{}, fmt.Errorf("tesseract: nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("tesseract: encode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.languages...); err != nil {
		return Result{}, fmt.Errorf("tesseract: language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return Result{}, fmt.Errorf("tesseract: page seg mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("tesseract: set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("tesseract: text: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return Result{}, fmt.Errorf("tesseract: lines: %w", err)
	}
	return Result{Text: text, Blocks: groupLines(boxes)}, nil
}

func (t *TesseractEngine) Close() error { return nil }

// groupLines buckets text lines by block number, keeping reported order.
func groupLines(boxes []gosseract.BoundingBox) []Block {
	var blocks []Block
	current := -1
	for _, b := range boxes {
		if len(blocks) == 0 || b.BlockNum != current {
			blocks = append(blocks, Block{})
			current = b.BlockNum
		}
		last := &blocks[len(blocks)-1]
		last.Lines = append(last.Lines, Line{Text: b.Word, Box: b.Box})
	}
	return blocks
}
