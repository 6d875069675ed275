package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionEngine uses Google Cloud Vision document text detection.
type VisionEngine struct {
	client *gvision.ImageAnnotatorClient
}

var _ Engine = (*VisionEngine)(nil)

// NewVisionEngine dials the Vision API. An empty credentialsFile uses
// application default credentials.
func NewVisionEngine(ctx context.Context, credentialsFile string) (*VisionEngine, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gvision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionEngine{client: client}, nil
}

func (v *VisionEngine) Name() string { return "vision" }

func (v *VisionEngine) Close() error {
	return v.client.Close()
}

func (v *VisionEngine) Recognize(ctx context.Context, img image.Image) (Result, error) {
	if img == nil {
		return Result{}, fmt.Errorf("vision: nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("vision: encode: %w", err)
	}
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: buf.Bytes()},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}
	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("vision API request failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return Result{}, nil
	}
	first := resp.Responses[0]
	if first.Error != nil {
		return Result{}, fmt.Errorf("vision API error: %s", first.Error.Message)
	}
	return documentResult(first.GetFullTextAnnotation()), nil
}

// documentResult rebuilds lines from symbol breaks, block by block.
func documentResult(doc *visionpb.TextAnnotation) Result {
	if doc == nil {
		return Result{}
	}
	res := Result{Text: doc.GetText()}
	for _, page := range doc.GetPages() {
		for _, pb := range page.GetBlocks() {
			var (
				block Block
				line  strings.Builder
			)
			flush := func() {
				if s := strings.TrimSpace(line.String()); s != "" {
					block.Lines = append(block.Lines, Line{Text: s, Box: boundingRect(pb.GetBoundingBox())})
				}
				line.Reset()
			}
			for _, para := range pb.GetParagraphs() {
				for _, word := range para.GetWords() {
					for _, sym := range word.GetSymbols() {
						line.WriteString(sym.GetText())
						switch sym.GetProperty().GetDetectedBreak().GetType() {
						case visionpb.TextAnnotation_DetectedBreak_SPACE,
							visionpb.TextAnnotation_DetectedBreak_SURE_SPACE:
							line.WriteByte(' ')
						case visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE,
							visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
							flush()
						case visionpb.TextAnnotation_DetectedBreak_HYPHEN:
							line.WriteByte('-')
							flush()
						}
					}
				}
			}
			flush()
			if len(block.Lines) > 0 {
				res.Blocks = append(res.Blocks, block)
			}
		}
	}
	return res
}

func boundingRect(poly *visionpb.BoundingPoly) image.Rectangle {
	var r image.Rectangle
	for i, v := range poly.GetVertices() {
		p := image.Pt(int(v.GetX()), int(v.GetY()))
		if i == 0 {
			r = image.Rectangle{Min: p, Max: p}
			continue
		}
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}
