package s3

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// ObjectPutter stores a single object.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, key, contentType string, data []byte) error
}

// Archive writes journals below a key prefix of one bucket.
type Archive struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewArchive creates an archive for bucket. The prefix may be empty.
func NewArchive(client ObjectPutter, bucket, prefix string) *Archive {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Archive{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Key returns the object key for a journal ID.
func (a *Archive) Key(id string) string {
	day := a.now().UTC().Format("2006/01/02")
	return a.prefix + path.Join(day, id+".json")
}

// Store uploads one journal document and returns its key.
func (a *Archive) Store(ctx context.Context, id string, data []byte) (string, error) {
	if id == "" {
		return "", fmt.Errorf("journal id is required")
	}
	key := a.Key(id)
	if err := a.client.PutObject(ctx, a.bucket, key, "application/json", data); err != nil {
		return "", err
	}
	return key, nil
}
