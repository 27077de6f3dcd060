package port

import "context"

// VisionRequest carries one extraction call: a fixed instruction and an image reference.
type VisionRequest struct {
	Instruction string
	ImageURL    string
}

// VisionResponse is the raw text a vision model returned for a VisionRequest.
type VisionResponse struct {
	Text      string
	ModelUsed string
}

// VisionModel abstracts a vision-capable chat-completion service.
type VisionModel interface {
	Describe(ctx context.Context, req VisionRequest) (*VisionResponse, error)
}
