package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	DefaultRainViewerURL = "https://api.rainviewer.com/public/weather-maps.json"
	rainViewerTileHost   = "https://tilecache.rainviewer.com"

	// 256px tiles, color scheme 2, smoothed with snow shown.
	rainViewerTileSuffix = "/256/{z}/{x}/{y}/2/1_1.png"
)

// RainViewerProvider reads the public RainViewer weather maps index.
type RainViewerProvider struct {
	name    string
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewRainViewerProvider(client *http.Client, url string) *RainViewerProvider {
	if url == "" {
		url = DefaultRainViewerURL
	}
	return &RainViewerProvider{
		name: "rainviewer",
		url:  url,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 250 * time.Millisecond,
				MaxInterval:     time.Second,
			},
		},
		circuit: newBreaker("rainviewer"),
	}
}

func (p *RainViewerProvider) Name() string {
	return p.name
}

type rainViewerMaps struct {
	Host  string `json:"host"`
	Radar struct {
		Past []struct {
			Time int64  `json:"time"`
			Path string `json:"path"`
		} `json:"past"`
	} `json:"radar"`
}

// FetchLatestFrame implements weather.RadarProvider.
func (p *RainViewerProvider) FetchLatestFrame(ctx context.Context) (weather.RadarFrame, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.RadarFrame{}, err
	}
	body, err := readBody(resp)
	if err != nil {
		return weather.RadarFrame{}, err
	}

	var maps rainViewerMaps
	if err := json.Unmarshal(body, &maps); err != nil {
		return weather.RadarFrame{}, fmt.Errorf("decode radar maps: %w", err)
	}
	if len(maps.Radar.Past) == 0 {
		return weather.RadarFrame{}, weather.ErrRadarUnavailable
	}

	latest := maps.Radar.Past[len(maps.Radar.Past)-1]
	return weather.RadarFrame{
		Time:    time.Unix(latest.Time, 0).UTC(),
		Path:    latest.Path,
		TileURL: tileURL(maps.Host, latest.Path, latest.Time),
	}, nil
}

func tileURL(host, path string, ts int64) string {
	if path == "" {
		return fmt.Sprintf("%s/v2/radar/%d%s", rainViewerTileHost, ts, rainViewerTileSuffix)
	}
	if host == "" {
		host = rainViewerTileHost
	}
	return strings.TrimRight(host, "/") + path + rainViewerTileSuffix
}
