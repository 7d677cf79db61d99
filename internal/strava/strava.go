// Package strava links user accounts to Strava and imports their activities.
// Imported tracks run through the same ingest path as GPX uploads, so summit
// correlation and privacy defaults behave identically for both sources.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/avolkau/summit-api/internal/config"
	"github.com/avolkau/summit-api/internal/geo"
	"github.com/avolkau/summit-api/internal/model"
	"github.com/avolkau/summit-api/internal/repository"
	"github.com/avolkau/summit-api/internal/service"
	"github.com/twpayne/go-polyline"
)

const (
	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token"
	apiBase  = "https://www.strava.com/api/v3"

	// activitiesPerPage is Strava's maximum page size.
	activitiesPerPage = 100
)

// Client drives the OAuth flow and activity import.
type Client struct {
	oauth   *oauth2.Config
	users   repository.UserRepository
	acts    repository.ActivityRepository
	svc     service.Interface
	logger  *zap.Logger
	apiBase string
}

// NewClient builds a Strava client from app credentials. apiBaseOverride is
// for tests; pass "" in production.
func NewClient(cfg config.StravaConfig, users repository.UserRepository, acts repository.ActivityRepository, svc service.Interface, logger *zap.Logger, apiBaseOverride string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := apiBase
	if apiBaseOverride != "" {
		base = apiBaseOverride
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"activity:read"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		users:   users,
		acts:    acts,
		svc:     svc,
		logger:  logger,
		apiBase: base,
	}
}

// AuthURL returns the Strava consent page URL for a link attempt. state must
// be an unguessable per-request value the callback checks.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Link exchanges the OAuth callback code and stores the tokens on the user.
func (c *Client) Link(ctx context.Context, uid, code string) error {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	user, err := c.users.GetByID(ctx, uid)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s not found", uid)
	}

	athleteID, err := c.fetchAthleteID(ctx, token)
	if err != nil {
		return fmt.Errorf("fetching athlete profile: %w", err)
	}

	user.StravaAccessToken = &token.AccessToken
	user.StravaRefreshToken = &token.RefreshToken
	expires := token.Expiry.UTC()
	user.StravaAccessTokenExpires = &expires
	user.StravaAthleteID = &athleteID
	if err := c.users.UpdateStravaTokens(ctx, user); err != nil {
		return fmt.Errorf("storing tokens: %w", err)
	}

	c.logger.Info("strava account linked",
		zap.String("user_id", uid),
		zap.Int64("athlete_id", athleteID))
	return nil
}

// Unlink discards the stored tokens so no further imports can run.
func (c *Client) Unlink(ctx context.Context, uid string) error {
	user, err := c.users.GetByID(ctx, uid)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s not found", uid)
	}
	user.StravaAccessToken = nil
	user.StravaRefreshToken = nil
	user.StravaAccessTokenExpires = nil
	user.StravaAthleteID = nil
	return c.users.UpdateStravaTokens(ctx, user)
}

// summaryActivity is the subset of Strava's SummaryActivity the import needs.
type summaryActivity struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	Timezone  string `json:"timezone"`
	Map       struct {
		SummaryPolyline string `json:"summary_polyline"`
	} `json:"map"`
}

// Import pulls the user's recent Strava activities and ingests the ones not
// seen before. Activities without a track polyline are skipped. Returns the
// number of newly created activities.
func (c *Client) Import(ctx context.Context, uid string) (int, error) {
	user, err := c.users.GetByID(ctx, uid)
	if err != nil {
		return 0, fmt.Errorf("loading user: %w", err)
	}
	if user == nil || user.StravaRefreshToken == nil {
		return 0, fmt.Errorf("user %s has no linked strava account", uid)
	}

	httpClient, err := c.authorizedClient(ctx, user)
	if err != nil {
		return 0, err
	}

	activities, err := c.fetchActivities(ctx, httpClient)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, a := range activities {
		sourceID := strconv.FormatInt(a.ID, 10)
		exists, err := c.acts.ExistsBySource(ctx, model.ActivitySourceStrava, sourceID)
		if err != nil {
			return created, fmt.Errorf("checking for existing activity: %w", err)
		}
		if exists {
			continue
		}
		if a.Map.SummaryPolyline == "" {
			continue
		}

		req, err := toCreateRequest(a)
		if err != nil {
			c.logger.Warn("skipping unparseable strava activity",
				zap.Int64("strava_id", a.ID), zap.Error(err))
			continue
		}
		if user.StravaAthleteID != nil {
			athlete := strconv.FormatInt(*user.StravaAthleteID, 10)
			req.SourceUserID = &athlete
		}
		if _, err := c.svc.CreateActivity(ctx, uid, *req); err != nil {
			return created, fmt.Errorf("ingesting strava activity %d: %w", a.ID, err)
		}
		created++
	}

	c.logger.Info("strava import finished",
		zap.String("user_id", uid),
		zap.Int("fetched", len(activities)),
		zap.Int("created", created))
	return created, nil
}

// toCreateRequest converts a Strava summary to the shared ingest request.
func toCreateRequest(a summaryActivity) (*model.CreateActivityRequest, error) {
	coords, _, err := polyline.DecodeCoords([]byte(a.Map.SummaryPolyline))
	if err != nil {
		return nil, fmt.Errorf("decoding polyline: %w", err)
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("polyline has %d points, want at least 2", len(coords))
	}
	// Polylines are lat/lon pairs; GeoJSON wants lon/lat.
	pairs := make([][2]float64, len(coords))
	for i, co := range coords {
		pairs[i] = [2]float64{co[1], co[0]}
	}
	path, err := geo.MarshalLineString(geo.NewLineString(pairs))
	if err != nil {
		return nil, err
	}

	started, err := time.Parse(time.RFC3339, a.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start date %q: %w", a.StartDate, err)
	}
	started = started.UTC()

	sourceID := strconv.FormatInt(a.ID, 10)
	return &model.CreateActivityRequest{
		Source:   model.ActivitySourceStrava,
		SourceID: &sourceID,
		Name:     a.Name,
		Date:     started.Format("2006-01-02"),
		Time:     started.Format("15:04:05Z07:00"),
		TimeZone: parseTimezone(a.Timezone),
		Path:     &path,
	}, nil
}

// parseTimezone extracts the IANA name from Strava's
// "(GMT-07:00) America/Denver" format.
func parseTimezone(tz string) string {
	for i := len(tz) - 1; i >= 0; i-- {
		if tz[i] == ' ' {
			return tz[i+1:]
		}
	}
	if tz == "" {
		return "UTC"
	}
	return tz
}

// authorizedClient returns an HTTP client carrying a valid access token,
// refreshing and persisting it when the stored one has expired.
func (c *Client) authorizedClient(ctx context.Context, user *model.User) (*http.Client, error) {
	token := &oauth2.Token{RefreshToken: *user.StravaRefreshToken}
	if user.StravaAccessToken != nil && user.StravaAccessTokenExpires != nil {
		token.AccessToken = *user.StravaAccessToken
		token.Expiry = *user.StravaAccessTokenExpires
	}

	source := c.oauth.TokenSource(ctx, token)
	fresh, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing access token: %w", err)
	}
	if fresh.AccessToken != token.AccessToken {
		user.StravaAccessToken = &fresh.AccessToken
		user.StravaRefreshToken = &fresh.RefreshToken
		expires := fresh.Expiry.UTC()
		user.StravaAccessTokenExpires = &expires
		if err := c.users.UpdateStravaTokens(ctx, user); err != nil {
			return nil, fmt.Errorf("storing refreshed tokens: %w", err)
		}
	}
	return oauth2.NewClient(ctx, source), nil
}

func (c *Client) fetchActivities(ctx context.Context, client *http.Client) ([]summaryActivity, error) {
	url := fmt.Sprintf("%s/athlete/activities?per_page=%d", c.apiBase, activitiesPerPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("strava returned status %d listing activities", resp.StatusCode)
	}

	var activities []summaryActivity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", err)
	}
	return activities, nil
}

func (c *Client) fetchAthleteID(ctx context.Context, token *oauth2.Token) (int64, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/athlete", nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("strava returned status %d fetching athlete", resp.StatusCode)
	}
	var athlete struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&athlete); err != nil {
		return 0, err
	}
	return athlete.ID, nil
}
