package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ruziba3vich/token-service/internal/domain/oauth"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

const (
	authCodePrefix = "auth_code:"

	// Consumed/expired records stick around this long past expiry so a
	// replay can be reported as consumed or expired rather than
	// not-found.
	redemptionRetention = 10 * time.Minute
)

// AuthorizationCodeRepository stores OAuth authorization codes in Redis
// with auto-expiry and atomic single-use redemption.
type AuthorizationCodeRepository struct {
	client *Client
}

func NewAuthorizationCodeRepository(client *Client) *AuthorizationCodeRepository {
	return &AuthorizationCodeRepository{client: client}
}

type authCodeData struct {
	Code                string    `json:"code"`
	ClientID            string    `json:"client_id"`
	Subject             string    `json:"subject"`
	RedirectURI         string    `json:"redirect_uri"`
	Scope               string    `json:"scope"`
	Nonce               string    `json:"nonce,omitempty"`
	CodeChallenge       string    `json:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method"`
	ExpiresAt           time.Time `json:"expires_at"`
	CreatedAt           time.Time `json:"created_at"`
}

// Store saves the code. Uses HSETNX on the payload field to prevent
// collisions.
func (r *AuthorizationCodeRepository) Store(ctx context.Context, code *oauth.AuthorizationCode) error {
	key := authCodePrefix + code.Code

	data := authCodeData{
		Code:                code.Code,
		ClientID:            code.ClientID,
		Subject:             code.Subject,
		RedirectURI:         code.RedirectURI,
		Scope:               code.Scope,
		Nonce:               code.Nonce,
		CodeChallenge:       code.CodeChallenge,
		CodeChallengeMethod: code.CodeChallengeMethod,
		ExpiresAt:           code.ExpiresAt,
		CreatedAt:           code.CreatedAt,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal auth code")
	}

	if time.Until(code.ExpiresAt) <= 0 {
		return apperrors.ErrCodeExpired
	}

	created, err := r.client.HSetNX(ctx, key, "data", jsonData)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	if !created {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, "authorization code collision")
	}

	if err := r.client.HSet(ctx, key, "consumed", "0", "exp", code.ExpiresAt.Unix()); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	if err := r.client.ExpireAt(ctx, key, code.ExpiresAt.Add(redemptionRetention)); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}

	return nil
}

// Redeem atomically consumes the code. Exactly one concurrent caller
// succeeds; the rest see ErrCodeConsumed, or ErrCodeExpired once the code
// is past its expiry.
func (r *AuthorizationCodeRepository) Redeem(ctx context.Context, code string) (*oauth.AuthorizationCode, error) {
	key := authCodePrefix + code

	raw, err := r.client.EvalScript(ctx, redeemScript, []string{key}, time.Now().UTC().Unix())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}

	status, payload := redeemResult(raw)
	switch status {
	case redeemOK:
	case redeemExpired:
		return nil, apperrors.ErrCodeExpired
	case redeemConsumed:
		return nil, apperrors.ErrCodeConsumed
	default:
		return nil, apperrors.ErrCodeNotFound
	}

	var data authCodeData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal auth code")
	}

	return &oauth.AuthorizationCode{
		Code:                data.Code,
		ClientID:            data.ClientID,
		Subject:             data.Subject,
		RedirectURI:         data.RedirectURI,
		Scope:               data.Scope,
		Nonce:               data.Nonce,
		CodeChallenge:       data.CodeChallenge,
		CodeChallengeMethod: data.CodeChallengeMethod,
		Consumed:            true,
		ExpiresAt:           data.ExpiresAt,
		CreatedAt:           data.CreatedAt,
	}, nil
}

// Delete removes an authorization code.
func (r *AuthorizationCodeRepository) Delete(ctx context.Context, code string) error {
	if err := r.client.Delete(ctx, authCodePrefix+code); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}
