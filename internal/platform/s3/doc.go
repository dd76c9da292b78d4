// Package s3 provides a client for S3-compatible object storage.
//
// nbctl uses it to archive transaction journals. [Archive] lays objects out
// as <prefix><yyyy>/<mm>/<dd>/<journal id>.json so that journals of one day
// can be listed together.
package s3
