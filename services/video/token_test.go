package videosvc

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core"
)

func TestTokenService_IssueToken(t *testing.T) {
	conf := &core.Config{
		Video: core.VideoConfig{
			ApiKey:          "api-key",
			ApiSecret:       "super-secret",
			TokenExpiration: time.Hour,
		},
	}
	svc := NewTokenService(conf)

	signed, err := svc.IssueToken("standup", "mate@test.cd")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(conf.Video.ApiSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	assert.Equal(t, jwt.SigningMethodHS256, token.Method)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "api-key", claims["iss"])
	assert.Equal(t, "mate@test.cd", claims["sub"])

	exp := int64(claims["exp"].(float64))
	nbf := int64(claims["nbf"].(float64))
	assert.Equal(t, int64(time.Hour/time.Second), exp-nbf)

	// grants are scoped to the one room
	video, ok := claims["video"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "standup", video["room"])
	assert.Equal(t, true, video["roomJoin"])
	assert.Equal(t, true, video["canPublish"])
	assert.Equal(t, true, video["canSubscribe"])
}

func TestTokenService_IssueToken_wrongSecretFails(t *testing.T) {
	conf := &core.Config{
		Video: core.VideoConfig{ApiKey: "api-key", ApiSecret: "super-secret", TokenExpiration: time.Hour},
	}
	signed, err := NewTokenService(conf).IssueToken("standup", "mate@test.cd")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("not-the-secret"), nil
	})
	assert.Error(t, err)
}
