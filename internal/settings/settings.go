package settings

import "fmt"

// Keys under which the YouTube integration stores its values.
const (
	KeyClientID     = "youtube_client_id"
	KeyClientSecret = "youtube_client_secret"
	KeyAccessToken  = "youtube_access_token"
	KeyRefreshToken = "youtube_refresh_token"
	KeyChannelName  = "youtube_channel_name"
)

// Store persists named string settings. Callers own the key vocabulary;
// an absent key means "not configured".
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Settings is the operator-facing view of the stored YouTube configuration.
type Settings struct {
	ClientID        string `json:"client_id"`
	ClientSecret    string `json:"client_secret"`
	IsAuthenticated bool   `json:"is_authenticated"`
	ChannelName     string `json:"channel_name"`
}

// Snapshot reads the current configuration state. A connection counts as
// authenticated when an access token is stored, whether or not it is still
// accepted by the API.
func Snapshot(s Store) (Settings, error) {
	clientID, _, err := s.Get(KeyClientID)
	if err != nil {
		return Settings{}, fmt.Errorf("read client id: %w", err)
	}
	clientSecret, _, err := s.Get(KeyClientSecret)
	if err != nil {
		return Settings{}, fmt.Errorf("read client secret: %w", err)
	}
	accessToken, _, err := s.Get(KeyAccessToken)
	if err != nil {
		return Settings{}, fmt.Errorf("read access token: %w", err)
	}
	channelName, _, err := s.Get(KeyChannelName)
	if err != nil {
		return Settings{}, fmt.Errorf("read channel name: %w", err)
	}

	return Settings{
		ClientID:        clientID,
		ClientSecret:    clientSecret,
		IsAuthenticated: accessToken != "",
		ChannelName:     channelName,
	}, nil
}

// SaveClient stores the OAuth client credentials.
func SaveClient(s Store, clientID, clientSecret string) error {
	if err := s.Set(KeyClientID, clientID); err != nil {
		return fmt.Errorf("save client id: %w", err)
	}
	if err := s.Set(KeyClientSecret, clientSecret); err != nil {
		return fmt.Errorf("save client secret: %w", err)
	}
	return nil
}

// Disconnect removes the stored tokens and channel name while keeping the
// client credentials, so the operator can reconnect without re-entering them.
// Safe to call when nothing is connected.
func Disconnect(s Store) error {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyChannelName} {
		if err := s.Delete(key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
