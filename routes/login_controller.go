package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/danschewy/lexiform/app"
	"github.com/danschewy/lexiform/httpx"
	"github.com/danschewy/lexiform/log"
	"github.com/danschewy/lexiform/model"
)

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

var reRefreshToken = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := reRefreshToken.FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		resp, err := issueTokens(app, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		})
		if err != nil {
			httpx.LogStatus(w, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		resp.Flush(w)
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Signup(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := signupRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "signup.fields",
				"username, email and a password of at least 8 characters are required")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "signup.hash", err)
			return
		}

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO user (username, email, password_hash)
			VALUES (?, ?, ?)`,
			req.Username,
			req.Email,
			string(hash),
		)
		if err != nil {
			// unique violation or worse, either way the caller retries
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "signup.insert", "could not create user")
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

// OAuthCallback finishes an authorization-code login: exchange the code
// with the provider, read the user's email, upsert a local user carrying a
// one-time secret, then run that secret through the bearer server to turn
// it into a session, delivered as cookies.
func OAuthCallback(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.OAuth.ClientID == "" {
			httpx.LogStatus(w, http.StatusNotFound, log.DebugLevel, "oauth.disabled")
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "oauth.missing_code")
			return
		}

		conf := &oauth2.Config{
			ClientID:     app.OAuth.ClientID,
			ClientSecret: app.OAuth.ClientSecret,
			RedirectURL:  app.OAuth.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  app.OAuth.AuthURL,
				TokenURL: app.OAuth.TokenURL,
			},
		}

		token, err := conf.Exchange(r.Context(), code)
		if err != nil {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "oauth.exchange")
			return
		}

		userInfo, err := conf.Client(r.Context(), token).Get(app.OAuth.UserInfoURL)
		if err != nil {
			httpx.LogInternalError(w, "oauth.userinfo", err)
			return
		}
		defer userInfo.Body.Close()

		var claims struct {
			Email string `json:"email"`
		}
		err = json.NewDecoder(userInfo.Body).Decode(&claims)
		if err != nil || claims.Email == "" {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "oauth.userinfo.email")
			return
		}

		// federated users get an unusable password and a one-time secret
		secret := model.NewID()
		secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "oauth.secret.hash", err)
			return
		}
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(model.NewID()), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "oauth.password.hash", err)
			return
		}

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO user (username, email, password_hash, sso_secret_hash)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (username) DO UPDATE SET sso_secret_hash = excluded.sso_secret_hash`,
			claims.Email,
			claims.Email,
			string(passwordHash),
			string(secretHash),
		)
		if err != nil {
			httpx.LogInternalError(w, "oauth.upsert_user", err)
			return
		}

		resp, err := issueTokens(app, url.Values{
			"grant_type": {"password"},
			"username":   {claims.Email},
			"password":   {secret},
		})
		if err != nil {
			httpx.LogInternalError(w, "oauth.issue_tokens", err)
			return
		}
		if resp.Status() != http.StatusOK {
			httpx.LogStatus(w, resp.Status(), log.DebugLevel, "oauth.issue_tokens")
			return
		}

		var tokens map[string]any
		err = json.Unmarshal(resp.Body(), &tokens)
		if err != nil {
			httpx.LogInternalError(w, "oauth.parse_tokens", err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Path:     "/",
			Name:     "access_token",
			Value:    tokens["access_token"].(string),
			MaxAge:   int(tokens["expires_in"].(float64)),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.SetCookie(w, &http.Cookie{
			Path:     "/",
			Name:     "refresh_token",
			Value:    tokens["refresh_token"].(string),
			MaxAge:   60 * 60 * 24 * 365,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		redirect := r.URL.Query().Get("state")
		if redirect == "" || !strings.HasPrefix(redirect, "/") {
			redirect = "/"
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// issueTokens drives the bearer server through a synthesized grant request
// and captures its JSON response in a buffer.
func issueTokens(app app.App, body url.Values) (*httpx.ResponseBuffer, error) {
	req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

	resp := httpx.NewResponseBuffer()
	app.UserCredentials(resp, req)
	return resp, nil
}
