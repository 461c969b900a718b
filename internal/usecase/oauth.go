package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/config"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/security"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	discordAuthURL     = "https://discord.com/oauth2/authorize"
	discordTokenURL    = "https://discord.com/api/oauth2/token"
	discordUserInfoURL = "https://discord.com/api/users/@me"
)

// ErrOAuthExchangeFailed indicates the authorization code could not be
// exchanged or the provider profile could not be fetched.
var ErrOAuthExchangeFailed = errors.New("oauth exchange failed")

// oauthProfile is the provider-neutral identity extracted from a provider's
// userinfo endpoint.
type oauthProfile struct {
	Provider   domain.AuthProvider
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// OAuthService signs users in through external providers. Provider credentials
// are plain injected configuration; configs are built per call, nothing is
// registered process-wide.
type OAuthService struct {
	users     port.UserRepository
	accounts  *AccountService
	tokens    *security.TokenGenerator
	publisher port.EventPublisher
	cfg       config.OAuthSettings
	client    *http.Client
	logger    *zap.Logger
	now       func() time.Time
}

// NewOAuthService constructs an OAuth sign-in service.
func NewOAuthService(
	users port.UserRepository,
	accounts *AccountService,
	tokens *security.TokenGenerator,
	publisher port.EventPublisher,
	cfg config.OAuthSettings,
	logger *zap.Logger,
) *OAuthService {
	return &OAuthService{
		users:     users,
		accounts:  accounts,
		tokens:    tokens,
		publisher: publisher,
		cfg:       cfg,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
		now:       time.Now,
	}
}

// WithHTTPClient overrides the HTTP client used for provider calls, for tests.
func (s *OAuthService) WithHTTPClient(client *http.Client) *OAuthService {
	s.client = client
	return s
}

func googleConfig(settings config.OAuthProviderSettings) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		RedirectURL:  settings.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}
}

func discordConfig(settings config.OAuthProviderSettings) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		RedirectURL:  settings.RedirectURL,
		Scopes:       []string{"identify", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  discordAuthURL,
			TokenURL: discordTokenURL,
		},
	}
}

// LoginWithGoogle exchanges the authorization code and signs the user in,
// creating the account on first contact.
func (s *OAuthService) LoginWithGoogle(ctx context.Context, code string) (*LoginResult, error) {
	profile, err := s.fetchGoogleProfile(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.loginWithProfile(ctx, profile)
}

// LoginWithDiscord exchanges the authorization code and signs the user in,
// creating the account on first contact.
func (s *OAuthService) LoginWithDiscord(ctx context.Context, code string) (*LoginResult, error) {
	profile, err := s.fetchDiscordProfile(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.loginWithProfile(ctx, profile)
}

func (s *OAuthService) fetchGoogleProfile(ctx context.Context, code string) (oauthProfile, error) {
	conf := googleConfig(s.cfg.Google)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google code exchange failed", zap.Error(err))
		return oauthProfile{}, ErrOAuthExchangeFailed
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := s.fetchUserInfo(ctx, conf, token, googleUserInfoURL, &info); err != nil {
		return oauthProfile{}, err
	}

	return oauthProfile{
		Provider:   domain.AuthProviderGoogle,
		ProviderID: info.ID,
		Email:      strings.ToLower(info.Email),
		Name:       info.Name,
		AvatarURL:  info.Picture,
	}, nil
}

func (s *OAuthService) fetchDiscordProfile(ctx context.Context, code string) (oauthProfile, error) {
	conf := discordConfig(s.cfg.Discord)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("discord code exchange failed", zap.Error(err))
		return oauthProfile{}, ErrOAuthExchangeFailed
	}

	var info struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}
	if err := s.fetchUserInfo(ctx, conf, token, discordUserInfoURL, &info); err != nil {
		return oauthProfile{}, err
	}

	avatar := ""
	if info.Avatar != "" {
		avatar = fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", info.ID, info.Avatar)
	}

	return oauthProfile{
		Provider:   domain.AuthProviderDiscord,
		ProviderID: info.ID,
		Email:      strings.ToLower(info.Email),
		Name:       info.Username,
		AvatarURL:  avatar,
	}, nil
}

func (s *OAuthService) fetchUserInfo(ctx context.Context, conf *oauth2.Config, token *oauth2.Token, url string, dst any) error {
	resp, err := conf.Client(ctx, token).Get(url)
	if err != nil {
		s.logger.Warn("fetch oauth profile failed", zap.Error(err))
		return ErrOAuthExchangeFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("oauth profile endpoint returned non-200", zap.Int("status", resp.StatusCode))
		return ErrOAuthExchangeFailed
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode oauth profile: %w", err)
	}

	return nil
}

// loginWithProfile finds the account by provider ID, falls back to email
// linking, and creates a new account when neither matches.
func (s *OAuthService) loginWithProfile(ctx context.Context, profile oauthProfile) (*LoginResult, error) {
	if profile.ProviderID == "" {
		return nil, ErrOAuthExchangeFailed
	}

	user, err := s.users.GetByProviderID(ctx, profile.Provider, profile.ProviderID)
	if errors.Is(err, repository.ErrNotFound) && profile.Email != "" {
		user, err = s.users.GetByEmail(ctx, profile.Email)
		if err == nil {
			user = s.linkProvider(user, profile)
			if updateErr := s.users.Update(ctx, *user); updateErr != nil {
				return nil, fmt.Errorf("link provider: %w", updateErr)
			}
		}
	}

	switch {
	case err == nil:
		// existing account
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.createFromProfile(ctx, profile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	warning, err := s.accounts.Gate(*user)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.SetLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("stamp last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &LoginResult{Token: token, User: sanitized, Warning: warning}, nil
}

func (s *OAuthService) linkProvider(user *domain.User, profile oauthProfile) *domain.User {
	providerID := profile.ProviderID
	switch profile.Provider {
	case domain.AuthProviderGoogle:
		user.GoogleID = &providerID
	case domain.AuthProviderDiscord:
		user.DiscordID = &providerID
	}
	if user.AvatarURL == nil && profile.AvatarURL != "" {
		avatar := profile.AvatarURL
		user.AvatarURL = &avatar
	}
	return user
}

func (s *OAuthService) createFromProfile(ctx context.Context, profile oauthProfile) (*domain.User, error) {
	now := s.now().UTC()

	user := domain.User{
		ID:                   uuid.NewString(),
		Name:                 profile.Name,
		Email:                profile.Email,
		EmailVerified:        profile.Email != "",
		Role:                 domain.RoleUser,
		IsActivated:          true,
		AuthProvider:         profile.Provider,
		Preferences:          domain.DefaultPreferences(),
		NotificationSettings: domain.DefaultNotificationSettings(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	s.linkProvider(&user, profile)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.publisher != nil {
		event := domain.UserRegisteredEvent{
			UserID:             user.ID,
			Name:               user.Name,
			Email:              user.Email,
			RegisteredAt:       now,
			RegistrationMethod: string(profile.Provider),
		}
		if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Warn("publish user registered event failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return &user, nil
}
