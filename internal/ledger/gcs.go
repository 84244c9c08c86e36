package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"lark-base-gateway/internal/config"
)

// GCSStore keeps the processed-message set as a single JSON object in a
// Google Cloud Storage bucket.
type GCSStore struct {
	service *storage.Service
	bucket  string
	object  string
}

// NewGCSStore creates a store using application-default credentials unless
// the given options say otherwise.
func NewGCSStore(ctx context.Context, cfg *config.LedgerConfig, opts ...option.ClientOption) (*GCSStore, error) {
	service, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ledger: create storage service: %w", err)
	}

	return &GCSStore{
		service: service,
		bucket:  cfg.Bucket,
		object:  cfg.ObjectName,
	}, nil
}

// Load downloads and decodes the stored id list. Absent or unreadable
// objects yield an empty set.
func (s *GCSStore) Load(ctx context.Context) (map[string]struct{}, error) {
	resp, err := s.service.Objects.Get(s.bucket, s.object).Context(ctx).Download()
	if err != nil {
		logrus.Warnf("Ledger object %s/%s not readable, starting with no history: %v", s.bucket, s.object, err)
		return map[string]struct{}{}, nil
	}
	defer resp.Body.Close()

	var ids []string
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		logrus.Warnf("Ledger object %s/%s not decodable, starting with no history: %v", s.bucket, s.object, err)
		return map[string]struct{}{}, nil
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Save overwrites the stored object with the full id list.
func (s *GCSStore) Save(ctx context.Context, ids map[string]struct{}) error {
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Strings(list)

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("ledger: encode id list: %w", err)
	}

	object := &storage.Object{
		Name:        s.object,
		ContentType: "application/json",
	}
	_, err = s.service.Objects.Insert(s.bucket, object).
		Media(bytes.NewReader(data)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("ledger: save %s/%s: %w", s.bucket, s.object, err)
	}

	return nil
}
