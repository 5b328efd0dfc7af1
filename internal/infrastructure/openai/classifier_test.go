package openai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"ivision/internal/domain/entity"
)

type fakeClient struct {
	content string
	err     error
	request openai.ChatCompletionRequest
}

func (f *fakeClient) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.request = request
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}},
	}, nil
}

func TestEngine_Classify(t *testing.T) {
	client := &fakeClient{content: "```json\n{\"labels\":[{\"label\":\"cat\",\"confidence\":0.92},{\"label\":\" \",\"confidence\":0.5}]}\n```"}
	e := New(client, "")

	labels, err := e.Classify(context.Background(), &entity.Image{Data: []byte{1, 2}, Format: "png"})
	require.NoError(t, err)
	require.Equal(t, []entity.Classification{{Label: "cat", Confidence: 0.92}}, labels)

	require.Equal(t, DefaultModel, client.request.Model)
	parts := client.request.Messages[1].MultiContent
	require.Len(t, parts, 2)
	require.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
}

func TestEngine_ClassifyErrors(t *testing.T) {
	e := New(&fakeClient{err: errors.New("quota")}, "gpt-4o-mini")
	_, err := e.Classify(context.Background(), &entity.Image{Format: "jpeg"})
	require.ErrorContains(t, err, "quota")

	e = New(&fakeClient{content: "not json"}, "")
	_, err = e.Classify(context.Background(), &entity.Image{Format: "jpeg"})
	require.ErrorContains(t, err, "parse labels")
}
