package analysis

import (
	"context"

	"github.com/yanqian/foodeat/internal/domain/selection"
)

// Client posts an envelope to the diet backend. A non-2xx answer must be returned as
// *UpstreamError.
type Client interface {
	Analyze(ctx context.Context, accessToken string, env Envelope) (Response, error)
}

// PhotoResolver turns a photo reference into binary image data.
type PhotoResolver interface {
	Resolve(ctx context.Context, ref string) (selection.Photo, error)
}
