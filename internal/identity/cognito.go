package identity

import (
	"context"
	"errors"
	"fmt"

	"queens/internal/apperrors"
	"queens/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// cognitoAPI is the subset of the Cognito client used by CognitoGateway.
type cognitoAPI interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	AdminConfirmSignUp(ctx context.Context, params *cip.AdminConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.AdminConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	GetUser(ctx context.Context, params *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
	AdminDeleteUser(ctx context.Context, params *cip.AdminDeleteUserInput, optFns ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error)
}

// CognitoGateway delegates accounts and sessions to an AWS Cognito user pool.
// The app client must allow USER_PASSWORD_AUTH and have no client secret.
type CognitoGateway struct {
	api        cognitoAPI
	userPoolID string
	clientID   string
}

// NewCognitoGateway builds a gateway from the default AWS credential chain.
func NewCognitoGateway(ctx context.Context, cfg config.IdentityConfig) (*CognitoGateway, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newCognitoGateway(cip.NewFromConfig(awsCfg), cfg.CognitoUserPoolID, cfg.CognitoClientID), nil
}

func newCognitoGateway(api cognitoAPI, userPoolID, clientID string) *CognitoGateway {
	return &CognitoGateway{api: api, userPoolID: userPoolID, clientID: clientID}
}

// Register signs the user up and confirms the account so it can sign in immediately.
func (g *CognitoGateway) Register(ctx context.Context, email, password string) (string, error) {
	out, err := g.api.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(g.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return "", cognitoError(err)
	}

	_, err = g.api.AdminConfirmSignUp(ctx, &cip.AdminConfirmSignUpInput{
		UserPoolId: aws.String(g.userPoolID),
		Username:   aws.String(email),
	})
	if err != nil {
		return "", cognitoError(err)
	}
	return aws.ToString(out.UserSub), nil
}

// Authenticate runs the USER_PASSWORD_AUTH flow.
func (g *CognitoGateway) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	out, err := g.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(g.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, cognitoError(err)
	}
	res := out.AuthenticationResult
	if res == nil {
		// A challenge (MFA, new password) is not supported by this API.
		return nil, apperrors.Unauthorized("additional authentication challenge required")
	}
	return &Session{
		AccessToken:  aws.ToString(res.AccessToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		IDToken:      aws.ToString(res.IdToken),
		ExpiresIn:    int64(res.ExpiresIn),
	}, nil
}

// Verify resolves an access token through GetUser.
func (g *CognitoGateway) Verify(ctx context.Context, token string) (*Identity, error) {
	out, err := g.api.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(token)})
	if err != nil {
		err = cognitoError(err)
		if apperrors.Is(err, apperrors.KindUnauthorized) {
			return nil, apperrors.Unauthorized("invalid or expired token")
		}
		return nil, err
	}

	id := &Identity{Subject: aws.ToString(out.Username)}
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "sub":
			id.Subject = aws.ToString(attr.Value)
		case "email":
			id.Email = aws.ToString(attr.Value)
		}
	}
	if id.Email == "" {
		return nil, apperrors.Unauthorized("token carries no email")
	}
	return id, nil
}

// Remove deletes the account from the user pool.
func (g *CognitoGateway) Remove(ctx context.Context, email string) error {
	_, err := g.api.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(g.userPoolID),
		Username:   aws.String(email),
	})
	if err != nil {
		return cognitoError(err)
	}
	return nil
}

func cognitoError(err error) error {
	var (
		exists       *types.UsernameExistsException
		notAuth      *types.NotAuthorizedException
		notFound     *types.UserNotFoundException
		badPassword  *types.InvalidPasswordException
		badParameter *types.InvalidParameterException
	)
	switch {
	case errors.As(err, &exists):
		return apperrors.Conflict("email already registered")
	case errors.As(err, &notAuth), errors.As(err, &notFound):
		return &apperrors.Error{Kind: apperrors.KindUnauthorized, Message: "invalid credentials", Err: err}
	case errors.As(err, &badPassword):
		return apperrors.Validation("password does not meet the identity provider policy", map[string]string{"password": "policy"})
	case errors.As(err, &badParameter):
		return apperrors.Validation("identity provider rejected the request", nil)
	default:
		return apperrors.Unavailable("identity provider", err)
	}
}
