package dogs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"voicenav/internal/domain"
	"voicenav/internal/infra"
)

const (
	defaultImagesURL = "https://dog.ceo/api"
	defaultBreedsURL = "https://dogapi.dog/api/v2"

	breedsKey = "breeds"
	cacheTTL  = time.Hour
)

// Client combines dog.ceo (random images) and dogapi.dog (breed catalogue).
type Client struct {
	imagesURL  string
	breedsURL  string
	httpClient *http.Client

	group  singleflight.Group
	breeds *expirable.LRU[string, []domain.Breed]
	info   *expirable.LRU[string, *domain.BreedInfo]
}

func NewClient() *Client {
	return NewClientWithURLs(defaultImagesURL, defaultBreedsURL)
}

func NewClientWithURLs(imagesURL, breedsURL string) *Client {
	return &Client{
		imagesURL:  strings.TrimSuffix(imagesURL, "/"),
		breedsURL:  strings.TrimSuffix(breedsURL, "/"),
		httpClient: infra.NewHTTPClient(),
		breeds:     expirable.NewLRU[string, []domain.Breed](1, nil, cacheTTL),
		info:       expirable.NewLRU[string, *domain.BreedInfo](128, nil, cacheTTL),
	}
}

type imagesResponse struct {
	Message []string `json:"message"`
	Status  string   `json:"status"`
}

func (c *Client) RandomImages(ctx context.Context, n int) ([]string, error) {
	var resp imagesResponse
	u := fmt.Sprintf("%s/breeds/image/random/%d", c.imagesURL, n)
	if err := infra.GetJSON(ctx, c.httpClient, "dog.ceo", u, &resp); err != nil {
		return nil, fmt.Errorf("fetching dog images: %w", err)
	}

	if resp.Status != "success" {
		return nil, fmt.Errorf("dog.ceo status %q", resp.Status)
	}
	return resp.Message, nil
}

type breedAttributes struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Life        struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"life"`
}

type breedResource struct {
	ID         string          `json:"id"`
	Attributes breedAttributes `json:"attributes"`
}

// Breeds returns the first page of the breed catalogue. Concurrent callers
// share one request.
func (c *Client) Breeds(ctx context.Context) ([]domain.Breed, error) {
	if breeds, ok := c.breeds.Get(breedsKey); ok {
		return breeds, nil
	}

	v, err, _ := c.group.Do(breedsKey, func() (any, error) {
		var resp struct {
			Data []breedResource `json:"data"`
		}
		if err := infra.GetJSON(ctx, c.httpClient, "dogapi", c.breedsURL+"/breeds", &resp); err != nil {
			return nil, err
		}

		breeds := make([]domain.Breed, 0, len(resp.Data))
		for _, b := range resp.Data {
			breeds = append(breeds, domain.Breed{ID: b.ID, Name: b.Attributes.Name})
		}
		c.breeds.Add(breedsKey, breeds)
		return breeds, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching breeds: %w", err)
	}
	return v.([]domain.Breed), nil
}

func (c *Client) BreedInfo(ctx context.Context, id string) (*domain.BreedInfo, error) {
	if info, ok := c.info.Get(id); ok {
		return info, nil
	}

	var resp struct {
		Data breedResource `json:"data"`
	}
	if err := infra.GetJSON(ctx, c.httpClient, "dogapi", c.breedsURL+"/breeds/"+url.PathEscape(id), &resp); err != nil {
		return nil, fmt.Errorf("fetching breed %s: %w", id, err)
	}

	a := resp.Data.Attributes
	info := &domain.BreedInfo{
		Name:        a.Name,
		Description: a.Description,
		LifeMin:     a.Life.Min,
		LifeMax:     a.Life.Max,
	}
	c.info.Add(id, info)
	return info, nil
}
