package port

import "context"

// URLSigner turns a private object reference into a short-lived HTTPS URL.
type URLSigner interface {
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}

// ObjectReader fetches an object's bytes.
type ObjectReader interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// ObjectStorage is the read-only object store surface used by the pipeline.
type ObjectStorage interface {
	URLSigner
	ObjectReader
}
