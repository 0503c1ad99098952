// Package search keeps the Elasticsearch user directory used for invites.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
)

const (
	defaultSize = 10
	maxSize     = 50
	opTimeout   = 3 * time.Second
)

const usersMapping = `{
  "mappings": {
    "properties": {
      "id":              {"type": "keyword"},
      "name":            {"type": "text"},
      "email":           {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "profilePicture":  {"type": "keyword", "index": false},
      "isEmailVerified": {"type": "boolean"}
    }
  }
}`

// UserDoc is the public projection stored in the index.
type UserDoc struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProfilePicture  string `json:"profilePicture"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

func (d UserDoc) toEntity() entity.User {
	return entity.User{
		ID:              d.ID,
		Name:            d.Name,
		Email:           d.Email,
		ProfilePicture:  d.ProfilePicture,
		IsEmailVerified: d.IsEmailVerified,
	}
}

func docFromUser(u *entity.User) UserDoc {
	return UserDoc{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		ProfilePicture:  u.ProfilePicture,
		IsEmailVerified: u.IsEmailVerified,
	}
}

type UserIndex struct {
	es    *elasticsearch.Client
	index string
}

// NewUserIndex returns nil when es is nil so callers can keep search optional.
func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	if es == nil || index == "" {
		return nil
	}
	return &UserIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping if missing.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(c))
	if err != nil {
		return fmt.Errorf("es index exists: %w", err)
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(c),
		x.es.Indices.Create.WithBody(strings.NewReader(usersMapping)))
	if err != nil {
		return fmt.Errorf("es create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	// 400 resource_already_exists when another instance won the race
	if res.IsError() && res.StatusCode != 400 {
		return fmt.Errorf("es create index: %s", res.Status())
	}
	return nil
}

func (x *UserIndex) IndexUser(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(docFromUser(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es index user: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index user: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over email and name. Hits carry public fields only.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]entity.User, error) {
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source UserDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("es search decode: %w", err)
	}

	out := make([]entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.toEntity())
	}
	return out, nil
}
