//go:build !gocv
// +build !gocv

package opencv

import (
	"context"

	"ivision/internal/domain/entity"
)

// DetectObjects возвращает ошибку, если сборка без тега gocv.
func (e *Engine) DetectObjects(ctx context.Context, img *entity.Image) ([]entity.ObjectObservation, error) {
	return nil, entity.ErrEngineUnavailable
}
