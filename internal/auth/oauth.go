package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/duduji/api/internal/config"
	"github.com/duduji/api/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/kakao"
)

// OAuthProvider pairs an oauth2 config with the provider-specific userinfo
// fetch, normalizing whatever the provider returns into a SocialProfile.
type OAuthProvider struct {
	Name   models.Provider
	Config *oauth2.Config
	Fetch  func(ctx context.Context, client *http.Client) (SocialProfile, error)
}

func NewGoogleProvider(cfg *config.Config) *OAuthProvider {
	return &OAuthProvider{
		Name: models.ProviderGoogle,
		Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("http://%s%s/auth/google-sign-in/redirect", cfg.AppHost, cfg.ServerAddr),
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		Fetch: fetchGoogleProfile,
	}
}

func NewKakaoProvider(cfg *config.Config) *OAuthProvider {
	return &OAuthProvider{
		Name: models.ProviderKakao,
		Config: &oauth2.Config{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURL:  fmt.Sprintf("http://%s%s/auth/kakao-sign-in/redirect", cfg.AppHost, cfg.ServerAddr),
			Scopes:       []string{"profile_nickname", "profile_image", "account_email"},
			Endpoint:     kakao.Endpoint,
		},
		Fetch: fetchKakaoProfile,
	}
}

func fetchGoogleProfile(ctx context.Context, client *http.Client) (SocialProfile, error) {
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return SocialProfile{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return SocialProfile{}, err
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return SocialProfile{}, err
	}

	return SocialProfile{
		ID:        info.ID,
		Provider:  models.ProviderGoogle,
		Name:      info.Name,
		Email:     info.Email,
		Thumbnail: info.Picture,
	}, nil
}

func fetchKakaoProfile(ctx context.Context, client *http.Client) (SocialProfile, error) {
	resp, err := client.Get("https://kapi.kakao.com/v2/user/me")
	if err != nil {
		return SocialProfile{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return SocialProfile{}, err
	}

	var info struct {
		ID      int64 `json:"id"`
		Account struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname        string `json:"nickname"`
				ProfileImageURL string `json:"profile_image_url"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return SocialProfile{}, err
	}

	return SocialProfile{
		ID:        fmt.Sprintf("%d", info.ID),
		Provider:  models.ProviderKakao,
		Name:      info.Account.Profile.Nickname,
		Email:     info.Account.Email,
		Thumbnail: info.Account.Profile.ProfileImageURL,
	}, nil
}

// stateStore guards the OAuth dance against CSRF; states are single-use and
// expire after five minutes.
type stateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[string]time.Time)}
}

func (s *stateStore) Issue() string {
	b := make([]byte, 32)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = time.Now().Add(5 * time.Minute)

	for k, v := range s.states {
		if time.Now().After(v) {
			delete(s.states, k)
		}
	}

	return state
}

func (s *stateStore) Redeem(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.states[state]
	if !ok || time.Now().After(expiry) {
		return false
	}
	delete(s.states, state)
	return true
}
