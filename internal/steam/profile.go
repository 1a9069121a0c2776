package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/steambridge/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAPIBaseURL = "https://api.steampowered.com"
	DefaultCDNBaseURL = "https://cdn.akamai.steamstatic.com/steamcommunity/public/images"

	DefaultProfileTimeout = 10 * time.Second

	maxAPIBody = 1 << 20
)

// PlayerSummary es un jugador de ISteamUser/GetPlayerSummaries/v0002.
type PlayerSummary struct {
	SteamID      string `json:"steamid"`
	PersonaName  string `json:"personaname"`
	RealName     string `json:"realname"`
	ProfileURL   string `json:"profileurl"`
	Avatar       string `json:"avatar"`
	AvatarMedium string `json:"avatarmedium"`
	AvatarFull   string `json:"avatarfull"`
}

// EquippedItem es un ítem cosmético equipado. Los paths son relativos al CDN.
type EquippedItem struct {
	ImageLarge string `json:"image_large"`
	ImageSmall string `json:"image_small"`
	MovieWebm  string `json:"movie_webm"`
}

// ProfileItems es la respuesta de IPlayerService/GetProfileItemsEquipped/v1.
// Los ítems no equipados vienen vacíos.
type ProfileItems struct {
	ProfileBackground     EquippedItem `json:"profile_background"`
	MiniProfileBackground EquippedItem `json:"mini_profile_background"`
	AvatarFrame           EquippedItem `json:"avatar_frame"`
	AnimatedAvatar        EquippedItem `json:"animated_avatar"`
}

// Profile es el perfil aplanado que devuelve /userinfo.
type Profile struct {
	SteamID              string  `json:"steamId"`
	Sub                  string  `json:"sub"`
	Username             string  `json:"username"`
	Name                 string  `json:"name"`
	RealName             string  `json:"realName,omitempty"`
	AvatarSmall          string  `json:"avatarSmall"`
	AvatarMedium         string  `json:"avatarMedium"`
	AvatarLarge          string  `json:"avatarLarge"`
	AvatarAnimated       *string `json:"avatarAnimated"`
	AvatarFrame          *string `json:"avatarFrame"`
	ProfileURL           string  `json:"profileUrl"`
	BackgroundStatic     *string `json:"backgroundStatic"`
	BackgroundMovie      *string `json:"backgroundMovie"`
	MiniBackgroundStatic *string `json:"miniBackgroundStatic"`
	MiniBackgroundMovie  *string `json:"miniBackgroundMovie"`
}

// MergeProfile combina los dos payloads de Steam en el perfil aplanado. Es pura.
func MergeProfile(steamID string, player PlayerSummary, items ProfileItems, cdnBase string) Profile {
	cdn := func(path string) *string {
		path = strings.TrimSpace(path)
		if path == "" {
			return nil
		}
		s := strings.TrimRight(cdnBase, "/") + "/" + strings.TrimLeft(path, "/")
		return &s
	}
	return Profile{
		SteamID:              steamID,
		Sub:                  steamID,
		Username:             player.PersonaName,
		Name:                 player.PersonaName,
		RealName:             player.RealName,
		AvatarSmall:          player.Avatar,
		AvatarMedium:         player.AvatarMedium,
		AvatarLarge:          player.AvatarFull,
		AvatarAnimated:       cdn(items.AnimatedAvatar.ImageLarge),
		AvatarFrame:          cdn(items.AvatarFrame.ImageLarge),
		ProfileURL:           player.ProfileURL,
		BackgroundStatic:     cdn(items.ProfileBackground.ImageLarge),
		BackgroundMovie:      cdn(items.ProfileBackground.MovieWebm),
		MiniBackgroundStatic: cdn(items.MiniProfileBackground.ImageLarge),
		MiniBackgroundMovie:  cdn(items.MiniProfileBackground.MovieWebm),
	}
}

// ProfileConfig configura el cliente de la Web API.
type ProfileConfig struct {
	APIKey     string
	APIBaseURL string
	CDNBaseURL string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ProfileClient resuelve un SteamID64 en un Profile usando la Web API.
type ProfileClient struct {
	apiKey  string
	apiBase string
	cdnBase string
	http    *http.Client
}

// NewProfileClient crea el cliente. APIKey es obligatoria.
func NewProfileClient(cfg ProfileConfig) (*ProfileClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("steam: api key is required")
	}
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if apiBase == "" {
		apiBase = DefaultAPIBaseURL
	}
	cdnBase := strings.TrimSpace(cfg.CDNBaseURL)
	if cdnBase == "" {
		cdnBase = DefaultCDNBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultProfileTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &ProfileClient{apiKey: cfg.APIKey, apiBase: apiBase, cdnBase: cdnBase, http: hc}, nil
}

// FetchProfile corre las dos consultas en paralelo y mergea el resultado.
// Si cualquiera falla, devuelve *UpstreamError.
func (c *ProfileClient) FetchProfile(ctx context.Context, steamID string) (*Profile, error) {
	var (
		player PlayerSummary
		items  ProfileItems
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.playerSummary(gctx, steamID)
		if err != nil {
			return err
		}
		player = p
		return nil
	})
	g.Go(func() error {
		it, err := c.profileItems(gctx, steamID)
		if err != nil {
			return err
		}
		items = it
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := MergeProfile(steamID, player, items, c.cdnBase)
	return &p, nil
}

func (c *ProfileClient) playerSummary(ctx context.Context, steamID string) (PlayerSummary, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamids", steamID)

	var body struct {
		Response struct {
			Players []PlayerSummary `json:"players"`
		} `json:"response"`
	}
	if err := c.getJSON(ctx, "player_summaries", "/ISteamUser/GetPlayerSummaries/v0002/", q, &body); err != nil {
		return PlayerSummary{}, err
	}
	if len(body.Response.Players) == 0 {
		return PlayerSummary{}, &UpstreamError{Op: "player_summaries", Err: ErrPlayerNotFound}
	}
	return body.Response.Players[0], nil
}

func (c *ProfileClient) profileItems(ctx context.Context, steamID string) (ProfileItems, error) {
	q := url.Values{}
	q.Set("steamid", steamID)

	var body struct {
		Response ProfileItems `json:"response"`
	}
	if err := c.getJSON(ctx, "profile_items", "/IPlayerService/GetProfileItemsEquipped/v1/", q, &body); err != nil {
		return ProfileItems{}, err
	}
	return body.Response, nil
}

func (c *ProfileClient) getJSON(ctx context.Context, op, path string, q url.Values, out any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(op, err, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path+"?"+q.Encode(), nil)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Op: op, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIBody)).Decode(out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
