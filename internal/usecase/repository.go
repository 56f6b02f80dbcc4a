package usecase

import (
	"context"

	"github.com/steveoberholzer/HARAnalyzer/internal/domain"
)

type CaptureRepository interface {
	SaveCapture(ctx context.Context, c domain.Capture) error
	GetCapture(ctx context.Context, id string) (domain.Capture, bool, error)
	DeleteCapture(ctx context.Context, id string) error
	ListCaptures(ctx context.Context, f CaptureFilter) ([]domain.Capture, int, error)
	ClearAllCaptures(ctx context.Context) error
}

type CaptureFilter struct {
	Q      string // case-insensitive substring match on file name
	Limit  int
	Offset int
}
