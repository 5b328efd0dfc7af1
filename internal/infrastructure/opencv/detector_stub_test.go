//go:build !gocv
// +build !gocv

package opencv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ivision/internal/domain/entity"
)

func TestStubReportsUnavailable(t *testing.T) {
	e := New()
	_, err := e.DetectObjects(context.Background(), &entity.Image{})
	require.ErrorIs(t, err, entity.ErrEngineUnavailable)
	require.Equal(t, 20, e.MaxObjects)
}
