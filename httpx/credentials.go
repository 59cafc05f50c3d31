package httpx

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/danschewy/lexiform/config"
)

func NewBearerServer(db *sql.DB, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(db), nil)
}

type credentialsVerifier struct {
	db *sql.DB
}

func CredentialsVerifier(db *sql.DB) oauth.CredentialsVerifier {
	return &credentialsVerifier{db}
}

// ValidateUser accepts the stored password, or a one-time secret minted by
// the OAuth callback for federated logins. The one-time secret is cleared
// on first use.
func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	var passwordHash []byte
	var ssoSecretHash sql.NullString
	err := cs.db.
		QueryRow("SELECT password_hash, sso_secret_hash FROM user WHERE username=?", username).
		Scan(&passwordHash, &ssoSecretHash)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword(passwordHash, []byte(password)) == nil {
		return nil
	}

	if ssoSecretHash.Valid &&
		bcrypt.CompareHashAndPassword([]byte(ssoSecretHash.String), []byte(password)) == nil {
		_, err = cs.db.Exec("UPDATE user SET sso_secret_hash = NULL WHERE username=?", username)
		return err
	}

	return errors.New("invalid credentials")
}

func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	_, err := cs.db.Exec(
		"INSERT INTO token (username, token_id, refresh_token_id, expiration) VALUES (?, ?, ?, ?)",
		credential,
		tokenID,
		refreshTokenID,
		time.Now().Add(8760*time.Hour),
	)
	return err
}

func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	var expiration time.Time
	var ok bool

	cs.db.
		QueryRow(`
			DELETE FROM token
			WHERE username = ?
				AND token_id = ?
				AND refresh_token_id = ?
			RETURNING expiration, 1`,
			credential,
			tokenID,
			refreshTokenID,
		).
		Scan(&expiration, &ok)
	if !ok {
		return errors.New("could not refresh")
	}

	if expiration.Before(time.Now()) {
		return errors.New("could not refresh")
	}
	return nil
}

// AddClaims puts the user identity into the token so handlers can scope
// form and response queries to the session owner.
func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	var email string
	err := cs.db.
		QueryRow("SELECT email FROM user WHERE username=?", credential).
		Scan(&email)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"sub":   credential,
		"email": email,
	}, nil
}

func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
