package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
)

var (
	// appJWTConfig is the default JWT auth middleware config; populated
	// from the app config before the server is built.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "principalToken",
		Claims:        new(Claims),
	}

	jwtConf *core.Config
)

func initJWTConfig(conf *core.Config) {
	appJWTConfig.SigningKey = []byte(conf.SecretKey)
	jwtConf = conf
}

// Claims represents the authorization claims transmitted via a JWT.
// Identity is established by the upstream identity provider; the API
// takes the claims at face value once the signature checks out.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
}

func GetPrincipalClaims(p auth.Principal, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    jwtConf.AppName,
			Subject:   p.ID,
			Audience:  "OOS",
			ExpiresAt: now.Add(jwtConf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         p.Name,
		Email:        p.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the principal Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextPrincipal(ctx echo.Context) (auth.Principal, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

func refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(jwtConf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	p := auth.Principal{ID: claims.Subject, Email: claims.Email, Name: claims.Name}
	newClaims := GetPrincipalClaims(p, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}

type (
	authApi struct {
		authSvc *auth.Service
	}

	TokenResponse struct {
		Token string `json:"token"`
	}
)

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := authApi{authSvc: opts.AuthSvc}

	ag := g.Group("/auth", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *authApi) me(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	isAdmin, err := api.authSvc.HasAdminBadge(ctx.Request().Context(), principal.ID)
	if err != nil {
		return errors.Wrap(err, "checking admin badge")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"id":       principal.ID,
		"email":    principal.Email,
		"name":     principal.Name,
		"is_admin": isAdmin,
	})
}
