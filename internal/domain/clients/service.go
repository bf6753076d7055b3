package clients

import (
	"context"
	"errors"
	"sort"
	"strings"

	"c2ms/internal/platform/docstore"
)

var ErrNotFound = errors.New("client not found")

type Service struct {
	docs *docstore.Collection[Client, *Client]
}

func NewService(backend docstore.Backend) *Service {
	return &Service{docs: docstore.NewCollection[Client](backend, docstore.Clients)}
}

func (s *Service) Create(ctx context.Context, in Input) (*Client, error) {
	c := &Client{}
	apply(c, in)
	if err := s.docs.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Client, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(c, in)
	if err := s.docs.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	c, err := s.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.docs.Delete(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// List returns clients sorted by name, narrowed by a case-insensitive match
// on name, phone or city when query is set.
func (s *Service) List(ctx context.Context, query string) ([]Client, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]Client, 0, len(all))
	for _, c := range all {
		if needle == "" || matches(c, needle) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Nama) < strings.ToLower(out[j].Nama)
	})
	return out, nil
}

func matches(c Client, needle string) bool {
	return strings.Contains(strings.ToLower(c.Nama), needle) ||
		strings.Contains(strings.ToLower(c.Telepon), needle) ||
		strings.Contains(strings.ToLower(c.Kota), needle)
}

func apply(c *Client, in Input) {
	c.Nama = strings.TrimSpace(in.Nama)
	c.Tipe = strings.ToLower(strings.TrimSpace(in.Tipe))
	if c.Tipe == "" {
		c.Tipe = TipePerorangan
	}
	c.Telepon = strings.TrimSpace(in.Telepon)
	c.Email = strings.TrimSpace(in.Email)
	c.Alamat = strings.TrimSpace(in.Alamat)
	c.Kota = strings.TrimSpace(in.Kota)
	c.NPWP = strings.TrimSpace(in.NPWP)
	c.PKP = in.PKP
	c.Catatan = strings.TrimSpace(in.Catatan)
}
