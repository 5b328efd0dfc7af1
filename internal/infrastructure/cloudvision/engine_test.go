package cloudvision

import (
	"context"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/require"
	rpcstatus "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ivision/internal/domain/entity"
)

type fakeClient struct {
	calls    int
	errs     []error
	response *visionpb.AnnotateImageResponse
	requests []*visionpb.BatchAnnotateImagesRequest
}

func (f *fakeClient) BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{f.response},
	}, nil
}

func testImage() *entity.Image {
	return &entity.Image{Data: []byte("img"), Format: "png", Width: 200, Height: 100}
}

func vertices(points ...int32) *visionpb.BoundingPoly {
	poly := &visionpb.BoundingPoly{}
	for i := 0; i+1 < len(points); i += 2 {
		poly.Vertices = append(poly.Vertices, &visionpb.Vertex{X: points[i], Y: points[i+1]})
	}
	return poly
}

func word(text string, brk visionpb.TextAnnotation_DetectedBreak_BreakType, conf float32, poly *visionpb.BoundingPoly) *visionpb.Word {
	w := &visionpb.Word{BoundingBox: poly, Confidence: conf}
	for i, r := range text {
		symbol := &visionpb.Symbol{Text: string(r)}
		if i == len(text)-1 {
			symbol.Property = &visionpb.TextAnnotation_TextProperty{
				DetectedBreak: &visionpb.TextAnnotation_DetectedBreak{Type: brk},
			}
		}
		w.Symbols = append(w.Symbols, symbol)
	}
	return w
}

func TestEngine_DetectTextSkipsFullText(t *testing.T) {
	client := &fakeClient{response: &visionpb.AnnotateImageResponse{
		TextAnnotations: []*visionpb.EntityAnnotation{
			{Description: "Hello world", BoundingPoly: vertices(0, 0, 100, 0, 100, 20, 0, 20)},
			{Description: "Hello", BoundingPoly: vertices(0, 0, 40, 0, 40, 20, 0, 20)},
			{Description: "world", BoundingPoly: vertices(50, 0, 100, 0, 100, 20, 50, 20), Score: 0.8},
		},
	}}
	e := New(client, 0)

	text, err := e.DetectText(context.Background(), testImage())
	require.NoError(t, err)
	require.Len(t, text, 2)
	require.Equal(t, "Hello", text[0].Text)
	require.Equal(t, 1.0, text[0].Confidence)
	require.InDelta(t, 0.8, text[1].Confidence, 1e-6)
	require.Equal(t, entity.Box{Left: 50, Top: 0, Width: 50, Height: 20}, text[1].Box)

	feature := client.requests[0].GetRequests()[0].GetFeatures()[0]
	require.Equal(t, visionpb.Feature_TEXT_DETECTION, feature.GetType())
}

func TestEngine_RecognizeTextBuildsLines(t *testing.T) {
	client := &fakeClient{response: &visionpb.AnnotateImageResponse{
		FullTextAnnotation: &visionpb.TextAnnotation{
			Pages: []*visionpb.Page{{
				Blocks: []*visionpb.Block{{
					Paragraphs: []*visionpb.Paragraph{{
						Words: []*visionpb.Word{
							word("Hello", visionpb.TextAnnotation_DetectedBreak_SPACE, 0.9, vertices(0, 0, 40, 0, 40, 10, 0, 10)),
							word("world", visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE, 0.7, vertices(50, 0, 90, 0, 90, 12, 50, 12)),
							word("bye", visionpb.TextAnnotation_DetectedBreak_UNKNOWN, 1, vertices(0, 20, 30, 20, 30, 30, 0, 30)),
						},
					}},
				}},
			}},
		},
	}}
	e := New(client, 0)

	opts := entity.OCROptions{Languages: []string{"en", "de"}}
	result, err := e.RecognizeText(context.Background(), testImage(), opts)
	require.NoError(t, err)

	require.Equal(t, 200, result.ImageWidth)
	require.Len(t, result.Words, 3)
	require.Len(t, result.Lines, 2)
	require.Equal(t, "Hello world", result.Lines[0].Text)
	require.InDelta(t, 0.8, result.Lines[0].Confidence, 1e-6)
	require.Equal(t, entity.Box{Left: 0, Top: 0, Width: 90, Height: 12}, result.Lines[0].Box)
	require.Equal(t, "bye", result.Lines[1].Text)

	hints := client.requests[0].GetRequests()[0].GetImageContext().GetLanguageHints()
	require.Equal(t, []string{"en", "de"}, hints)
}

func TestEngine_ClassifyAndObjects(t *testing.T) {
	client := &fakeClient{response: &visionpb.AnnotateImageResponse{
		LabelAnnotations: []*visionpb.EntityAnnotation{{Description: "Cat", Score: 0.5}},
		LocalizedObjectAnnotations: []*visionpb.LocalizedObjectAnnotation{{
			Name:  "Cat",
			Score: 0.75,
			BoundingPoly: &visionpb.BoundingPoly{NormalizedVertices: []*visionpb.NormalizedVertex{
				{X: 0.25, Y: 0.5}, {X: 0.75, Y: 0.5}, {X: 0.75, Y: 1}, {X: 0.25, Y: 1},
			}},
		}},
	}}
	e := New(client, 0)

	labels, err := e.Classify(context.Background(), testImage())
	require.NoError(t, err)
	require.Equal(t, []entity.Classification{{Label: "Cat", Confidence: 0.5}}, labels)

	objects, err := e.DetectObjects(context.Background(), testImage())
	require.NoError(t, err)
	require.Len(t, objects, 1)
	require.Equal(t, entity.Box{Left: 50, Top: 50, Width: 100, Height: 50}, objects[0].Box)
	require.Equal(t, 0.75, objects[0].Confidence)
}

func TestEngine_RetriesTransientErrors(t *testing.T) {
	client := &fakeClient{
		errs:     []error{status.Error(codes.Unavailable, "try again"), status.Error(codes.Unavailable, "try again")},
		response: &visionpb.AnnotateImageResponse{},
	}
	e := New(client, 0)

	_, err := e.Classify(context.Background(), testImage())
	require.NoError(t, err)
	require.Equal(t, 3, client.calls)
}

func TestEngine_PermanentErrors(t *testing.T) {
	client := &fakeClient{errs: []error{status.Error(codes.InvalidArgument, "bad image")}}
	e := New(client, 0)

	_, err := e.Classify(context.Background(), testImage())
	require.Error(t, err)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.Equal(t, 1, client.calls)

	client = &fakeClient{response: &visionpb.AnnotateImageResponse{
		Error: &rpcstatus.Status{Code: int32(codes.InvalidArgument), Message: "Bad image data."},
	}}
	e = New(client, 0)
	_, err = e.DetectObjects(context.Background(), testImage())
	require.EqualError(t, err, "cloud vision: Bad image data.")
	require.Equal(t, 1, client.calls)
}
