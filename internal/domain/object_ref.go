package domain

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// ObjectRefScheme prefixes references to objects in a private bucket.
const ObjectRefScheme = "s3://"

// IsObjectRef reports whether ref uses the s3:// scheme (case-insensitive).
func IsObjectRef(ref string) bool {
	return len(ref) >= len(ObjectRefScheme) && strings.EqualFold(ref[:len(ObjectRefScheme)], ObjectRefScheme)
}

// ParseObjectRef splits s3://bucket/key into its bucket and key.
func ParseObjectRef(ref string) (bucket, key string, err error) {
	if !IsObjectRef(ref) {
		return "", "", errors.Newf("%q is not an s3:// reference", ref)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", errors.Wrap(err, "parsing s3 reference")
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.Newf("s3 reference %q needs a bucket and a key", ref)
	}
	return bucket, key, nil
}
