package filestore

import (
	"strings"

	"github.com/koustreak/pmysql/internal/errs"
)

// schemes accepted by ParseLocation.
var schemes = []string{"minio://", "s3://"}

// Location addresses one object in a bucket.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "minio://" + l.Bucket + "/" + l.Key
}

// IsRemote reports whether s uses an object-store scheme.
func IsRemote(s string) bool {
	for _, scheme := range schemes {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}

// ParseLocation parses "minio://bucket/key" (or "s3://bucket/key").
func ParseLocation(s string) (Location, error) {
	for _, scheme := range schemes {
		rest, ok := strings.CutPrefix(s, scheme)
		if !ok {
			continue
		}
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, errs.New(errs.ErrKindInvalidInput, "object location needs a bucket and a key: "+s)
		}
		return Location{Bucket: bucket, Key: key}, nil
	}
	return Location{}, errs.New(errs.ErrKindInvalidInput, "not an object location: "+s)
}
