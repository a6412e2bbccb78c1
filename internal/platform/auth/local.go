package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/primelabs/primelabs/internal/platform/docstore"
	"github.com/primelabs/primelabs/internal/platform/mailer"
	"github.com/primelabs/primelabs/pkg/validate"
)

const (
	CredentialsCollection = "credentials"

	purposeSession = ""
	purposeReset   = "password_reset"
)

// Claims are the JWT claims of session and reset tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Purpose string `json:"purpose,omitempty"`
}

type LocalConfig struct {
	SigningKey []byte
	Issuer     string
	TokenTTL   time.Duration
	ResetTTL   time.Duration
	// PublicURL is the base of password reset links.
	PublicURL  string
	BcryptCost int
}

type credentialDoc struct {
	Email             string        `json:"email"`
	PasswordHash      string        `json:"password_hash"`
	CreatedAt         docstore.Time `json:"created_at"`
	PasswordChangedAt docstore.Time `json:"password_changed_at"`
}

// LocalProvider stores bcrypt password hashes in the document store and
// issues HS256 tokens.
type LocalProvider struct {
	store  docstore.Store
	mail   mailer.Mailer
	cfg    LocalConfig
	logger zerolog.Logger
	now    func() time.Time
}

func NewLocalProvider(store docstore.Store, mail mailer.Mailer, cfg LocalConfig, logger zerolog.Logger) *LocalProvider {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 30 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "primelabs"
	}
	return &LocalProvider{store: store, mail: mail, cfg: cfg, logger: logger, now: time.Now}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*Credential, error) {
	email = NormalizeEmail(email)
	if !validate.Email(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if _, _, err := p.findByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := docstore.NewTime(p.now())
	id, err := p.store.Create(ctx, CredentialsCollection, credentialDoc{
		Email:             email,
		PasswordHash:      string(hash),
		CreatedAt:         now,
		PasswordChangedAt: now,
	}, uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}
	return p.issue(id, email)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	email = NormalizeEmail(email)
	id, doc, err := p.findByEmail(ctx, email)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.issue(id, email)
}

// Verify checks signature, expiry and purpose of a session token, and that
// the login still exists and has not changed its password since issue.
func (p *LocalProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := p.parse(token, purposeSession)
	if err != nil {
		return nil, err
	}
	doc, err := p.current(ctx, claims)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.Subject, Email: doc.Email}, nil
}

// current loads the credential a token was issued for and rejects the token
// when the password has changed since it was signed.
func (p *LocalProvider) current(ctx context.Context, claims *Claims) (*credentialDoc, error) {
	var doc credentialDoc
	if err := p.store.Read(ctx, CredentialsCollection, claims.Subject, &doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Time.Before(doc.PasswordChangedAt.Truncate(time.Second)) {
		return nil, ErrInvalidToken
	}
	return &doc, nil
}

// SendPasswordReset mails a reset link. Unknown emails succeed silently so
// the endpoint does not reveal which accounts exist.
func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	id, _, err := p.findByEmail(ctx, email)
	if errors.Is(err, docstore.ErrNotFound) {
		p.logger.Info().Str("email", email).Msg("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	token, _, err := p.sign(id, email, purposeReset, p.cfg.ResetTTL)
	if err != nil {
		return err
	}
	link := strings.TrimRight(p.cfg.PublicURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	if err := p.mail.Send(ctx, mailer.PasswordResetMessage(email, link, p.cfg.ResetTTL)); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	return nil
}

// ConfirmPasswordReset sets a new password. A reset token stops working once
// any password change lands after it was issued, including its own.
func (p *LocalProvider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := p.parse(token, purposeReset)
	if err != nil {
		return err
	}
	if _, err := p.current(ctx, claims); err != nil {
		return err
	}
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), p.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = p.store.Update(ctx, CredentialsCollection, claims.Subject, map[string]any{
		"password_hash":       string(hash),
		"password_changed_at": docstore.NewTime(p.now()),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrInvalidToken
	}
	return err
}

func (p *LocalProvider) Delete(ctx context.Context, userID string) error {
	err := p.store.Delete(ctx, CredentialsCollection, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	return err
}

func (p *LocalProvider) findByEmail(ctx context.Context, email string) (string, *credentialDoc, error) {
	page, err := p.store.Query(ctx, CredentialsCollection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("email", docstore.OpEq, email)},
		Limit:   1,
	})
	if err != nil {
		return "", nil, err
	}
	if len(page.Docs) == 0 {
		return "", nil, docstore.ErrNotFound
	}
	var doc credentialDoc
	if err := page.Docs[0].Decode(&doc); err != nil {
		return "", nil, err
	}
	return page.Docs[0].ID, &doc, nil
}

func (p *LocalProvider) issue(userID, email string) (*Credential, error) {
	token, exp, err := p.sign(userID, email, purposeSession, p.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &Credential{UserID: userID, Email: email, Token: token, ExpiresAt: exp}, nil
}

func (p *LocalProvider) sign(userID, email, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := p.now()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.New().String(),
		},
		Email:   email,
		Purpose: purpose,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (p *LocalProvider) parse(token, purpose string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.cfg.SigningKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.cfg.Issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid || claims.Purpose != purpose || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
