package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/shutterscout/internal/scout"
)

const ipapiUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// IPAPIProvider resolves locations from IP addresses with ipapi.co. No key is needed.
type IPAPIProvider struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewIPAPIProvider(client *http.Client) *IPAPIProvider {
	return &IPAPIProvider{
		name:    "ipapi",
		baseURL: "https://ipapi.co",
		client:  client,
	}
}

func (p *IPAPIProvider) Name() string {
	return p.name
}

type ipapiPayload struct {
	// error is true on failure; some error bodies carry a message instead.
	Error  any    `json:"error"`
	Reason string `json:"reason"`

	Latitude    *float64 `json:"latitude" validate:"required"`
	Longitude   *float64 `json:"longitude" validate:"required"`
	City        *string  `json:"city" validate:"required"`
	Region      *string  `json:"region" validate:"required"`
	CountryName *string  `json:"country_name" validate:"required"`
	Timezone    *string  `json:"timezone" validate:"required"`
}

// Locate looks up ip, or the caller's own address when ip is empty.
func (p *IPAPIProvider) Locate(ctx context.Context, ip string) (scout.Location, error) {
	loc, err := p.locate(ctx, ip)
	return loc, observe(p.name, err)
}

func (p *IPAPIProvider) locate(ctx context.Context, ip string) (scout.Location, error) {
	u := p.baseURL + "/json/"
	if ip = strings.TrimSpace(ip); ip != "" {
		u = fmt.Sprintf("%s/%s/json/", p.baseURL, url.PathEscape(ip))
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return scout.Location{}, scout.NewError(p.name, scout.KindNetwork, err)
	}
	req.Header.Set("User-Agent", ipapiUserAgent)

	var payload ipapiPayload
	if err := getJSON(ctx, p.name, p.client, req, &payload); err != nil {
		return scout.Location{}, err
	}

	if payload.Error != nil && payload.Error != false {
		reason := payload.Reason
		if reason == "" {
			reason = fmt.Sprint(payload.Error)
		}
		return scout.Location{}, scout.NewError(p.name, scout.KindProvider, errors.New(reason))
	}

	if err := checkShape(p.name, payload); err != nil {
		return scout.Location{}, err
	}

	return scout.Location{
		Latitude:  *payload.Latitude,
		Longitude: *payload.Longitude,
		City:      *payload.City,
		Region:    *payload.Region,
		Country:   *payload.CountryName,
		Timezone:  *payload.Timezone,
	}, nil
}
