package youtube

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/nguyentantai21042004/video-comprehend/internal/logger"
)

type implClient struct {
	service *yt.Service
	logger  logger.Logger
}

// New creates a Client authenticated with an API key. Extra options are
// appended after the key, which lets tests point the client at a local
// endpoint.
func New(ctx context.Context, apiKey string, log logger.Logger, opts ...option.ClientOption) (Client, error) {
	if apiKey == "" {
		return nil, errors.New("youtube api key is empty")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &implClient{service: service, logger: log}, nil
}
