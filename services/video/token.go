package videosvc

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/meeting"
)

type tokenService struct {
	apiKey     string
	apiSecret  string
	expiration time.Duration
}

var _ meeting.TokenIssuer = (*tokenService)(nil)

func NewTokenService(conf *core.Config) *tokenService {
	return &tokenService{
		apiKey:     conf.Video.ApiKey,
		apiSecret:  conf.Video.ApiSecret,
		expiration: conf.Video.TokenExpiration,
	}
}

// IssueToken signs a room access token for the participant. Grants are
// scoped to the one room; the token authorizes nothing else.
func (svc tokenService) IssueToken(roomName, participantIdentity string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"iss": svc.apiKey,
		"sub": participantIdentity,
		"nbf": now.Unix(),
		"exp": now.Add(svc.expiration).Unix(),
		"video": map[string]interface{}{
			"room":         roomName,
			"roomJoin":     true,
			"canPublish":   true,
			"canSubscribe": true,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(svc.apiSecret))
	if err != nil {
		return "", errors.Wrap(err, "signing room token")
	}
	return signed, nil
}
