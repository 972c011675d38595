package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/shutterscout/internal/common"
	"github.com/i474232898/shutterscout/internal/scout"
)

// PhotoSize is a Flickr static image size suffix.
type PhotoSize string

const (
	PhotoSizeSmallSquare PhotoSize = "s" // 75x75
	PhotoSizeLargeSquare PhotoSize = "q" // 150x150
	PhotoSizeThumbnail   PhotoSize = "t" // 100 on longest side
	PhotoSizeSmall       PhotoSize = "m" // 240 on longest side
	PhotoSizeMedium      PhotoSize = ""  // 500 on longest side
	PhotoSizeLarge       PhotoSize = "b" // 1024 on longest side
	PhotoSizeLarge1600   PhotoSize = "h"
	PhotoSizeLarge2048   PhotoSize = "k"
)

const flickrPerPage = 5

// ParsePhotoSize maps a configured size name to its suffix. "medium" and
// unknown values select the default 500px image.
func ParsePhotoSize(s string) PhotoSize {
	switch PhotoSize(s) {
	case PhotoSizeSmallSquare, PhotoSizeLargeSquare, PhotoSizeThumbnail, PhotoSizeSmall,
		PhotoSizeLarge, PhotoSizeLarge1600, PhotoSizeLarge2048:
		return PhotoSize(s)
	default:
		return PhotoSizeMedium
	}
}

// FlickrProvider searches geotagged photos with the Flickr REST API.
type FlickrProvider struct {
	name    string
	apiKey  string
	baseURL string
	size    PhotoSize
	client  *http.Client
}

func NewFlickrProvider(client *http.Client, apiKey string, size PhotoSize) *FlickrProvider {
	return &FlickrProvider{
		name:    "flickr",
		apiKey:  apiKey,
		baseURL: "https://www.flickr.com/services/rest/",
		size:    size,
		client:  client,
	}
}

func (p *FlickrProvider) Name() string {
	return p.name
}

type flickrPayload struct {
	Stat    string `json:"stat"`
	Message string `json:"message"`
	Photos  *struct {
		Photo []flickrPhoto `json:"photo" validate:"required,dive"`
	} `json:"photos" validate:"required"`
}

type flickrPhoto struct {
	ID     *string `json:"id" validate:"required"`
	Secret *string `json:"secret" validate:"required"`
	Server *string `json:"server" validate:"required"`
	Farm   *int    `json:"farm" validate:"required"`
	Title  *string `json:"title" validate:"required"`
}

// SearchPhotos returns up to five relevant photos for text within radiusKm of the coordinates.
func (p *FlickrProvider) SearchPhotos(ctx context.Context, text string, lat, lon float64, radiusKm int) ([]scout.Photo, error) {
	photos, err := p.searchPhotos(ctx, text, lat, lon, radiusKm)
	return photos, observe(p.name, err)
}

func (p *FlickrProvider) searchPhotos(ctx context.Context, text string, lat, lon float64, radiusKm int) ([]scout.Photo, error) {
	if p.apiKey == "" {
		return nil, scout.NewError(p.name, scout.KindConfig, fmt.Errorf("FLICKR_API_KEY: %w", errMissingKey))
	}

	values := url.Values{}
	values.Set("method", "flickr.photos.search")
	values.Set("api_key", p.apiKey)
	values.Set("text", text)
	values.Set("lat", common.FormatCoord(lat))
	values.Set("lon", common.FormatCoord(lon))
	values.Set("radius", strconv.Itoa(radiusKm))
	values.Set("format", "json")
	values.Set("nojsoncallback", "1")
	values.Set("sort", "relevance")
	values.Set("per_page", strconv.Itoa(flickrPerPage))
	values.Set("extras", "views,date_taken")

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, scout.NewError(p.name, scout.KindNetwork, err)
	}

	var payload flickrPayload
	if err := getJSON(ctx, p.name, p.client, req, &payload); err != nil {
		return nil, err
	}

	if payload.Stat != "ok" {
		msg := payload.Message
		if msg == "" {
			msg = "unknown Flickr API error"
		}
		return nil, scout.NewError(p.name, scout.KindProvider, errors.New(msg))
	}

	if err := checkShape(p.name, payload); err != nil {
		return nil, err
	}

	photos := make([]scout.Photo, 0, len(payload.Photos.Photo))
	for _, ph := range payload.Photos.Photo {
		photos = append(photos, scout.Photo{
			ID:    *ph.ID,
			Title: *ph.Title,
			URL:   PhotoURL(*ph.Farm, *ph.Server, *ph.ID, *ph.Secret, p.size),
		})
	}
	return photos, nil
}

// PhotoURL builds the direct static image URL for a Flickr photo.
func PhotoURL(farm int, server, id, secret string, size PhotoSize) string {
	suffix := ""
	if size != PhotoSizeMedium {
		suffix = "_" + string(size)
	}
	return fmt.Sprintf("https://farm%d.staticflickr.com/%s/%s_%s%s.jpg", farm, server, id, secret, suffix)
}
