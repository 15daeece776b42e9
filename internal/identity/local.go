package identity

import (
	"context"
	"fmt"
	"time"

	"queens/internal/apperrors"
	"queens/internal/models"
	"queens/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = apperrors.Unauthorized("invalid credentials")

// LocalGateway keeps bcrypt hashes in the database and issues HS256 session tokens.
type LocalGateway struct {
	creds     repositories.CredentialRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewLocalGateway creates a new LocalGateway.
func NewLocalGateway(creds repositories.CredentialRepository, jwtSecret string, tokenTTL time.Duration) *LocalGateway {
	return &LocalGateway{
		creds:     creds,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register hashes the password and stores the credential.
func (g *LocalGateway) Register(ctx context.Context, email, password string) (string, error) {
	if _, err := g.creds.GetByEmail(ctx, email); err == nil {
		return "", apperrors.Conflict(fmt.Sprintf("email '%s' already registered", email))
	} else if !apperrors.Is(err, apperrors.KindNotFound) {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &models.Credential{
		Email:        email,
		Subject:      uuid.New().String(),
		PasswordHash: string(hashedPassword),
	}
	if err := g.creds.Create(ctx, cred); err != nil {
		return "", fmt.Errorf("failed to register credential: %w", err)
	}
	return cred.Subject, nil
}

// Authenticate checks the password and issues a session token.
func (g *LocalGateway) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	cred, err := g.creds.GetByEmail(ctx, email)
	if err != nil {
		// Unknown accounts look the same as a wrong password.
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   cred.Subject,
		"email": cred.Email,
		"exp":   now.Add(g.tokenTTL).Unix(),
		"iat":   now.Unix(),
	})

	tokenString, err := token.SignedString(g.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &Session{
		AccessToken: tokenString,
		ExpiresIn:   int64(g.tokenTTL.Seconds()),
	}, nil
}

// Verify parses and validates a session token.
func (g *LocalGateway) Verify(_ context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.jwtSecret, nil
	})
	if err != nil {
		return nil, &apperrors.Error{Kind: apperrors.KindUnauthorized, Message: "invalid or expired token", Err: err}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	return &Identity{Subject: sub, Email: email}, nil
}

// Remove deletes the stored credential.
func (g *LocalGateway) Remove(ctx context.Context, email string) error {
	return g.creds.Delete(ctx, email)
}
