package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"biblioteca_backend/internals/configs"
	"biblioteca_backend/internals/constants"
	authHelper "biblioteca_backend/internals/features/users/auth/helper"
	authRepo "biblioteca_backend/internals/features/users/auth/repository"
	userModel "biblioteca_backend/internals/features/users/user/model"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: usuario o contraseña inválidos", helper.ErrUnauthorized)
	ErrUserInactive       = fmt.Errorf("%w: la cuenta está desactivada", helper.ErrUnauthorized)
	ErrUserExists         = fmt.Errorf("%w: el usuario ya existe", helper.ErrValidation)
	ErrInvalidGoogleToken = fmt.Errorf("%w: token de Google no válido", helper.ErrUnauthorized)
	ErrGoogleDisabled     = fmt.Errorf("%w: inicio de sesión con Google no configurado", helper.ErrValidation)
)

/* ==========================
   Types
========================== */

type RegisterInput struct {
	UserName string
	Email    string
	Password string
	FullName string
}

// LoginResult: bentuk response login {token, username, roles, expiration}.
type LoginResult struct {
	Token      string    `json:"token"`
	UserName   string    `json:"username"`
	Roles      []string  `json:"roles"`
	Expiration time.Time `json:"expiration"`
}

type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

type GoogleVerifier interface {
	Verify(idToken string) (*GoogleIdentity, error)
}

// futurendaVerifier: verifikasi id_token Google pakai public cert Google.
type futurendaVerifier struct {
	clientID string
}

func (v futurendaVerifier) Verify(idToken string) (*GoogleIdentity, error) {
	ver := googleAuthIDTokenVerifier.Verifier{}
	if err := ver.VerifyIDToken(idToken, []string{v.clientID}); err != nil {
		return nil, err
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, err
	}
	return &GoogleIdentity{Sub: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}

type Service struct {
	DB       *gorm.DB
	Settings func() helperAuth.TokenSettings
	Google   GoogleVerifier
	now      func() time.Time
}

// NewService: verifier Google hanya aktif kalau GOOGLE_CLIENT_ID diset.
func NewService(db *gorm.DB) *Service {
	s := &Service{DB: db, Settings: helperAuth.SettingsFromEnv, now: func() time.Time { return time.Now().UTC() }}
	if configs.GoogleClientID != "" {
		s.Google = futurendaVerifier{clientID: configs.GoogleClientID}
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

/* ==========================
   REGISTER
========================== */

func (s *Service) Register(ctx context.Context, in RegisterInput) (*userModel.UserModel, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := authHelper.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", helper.ErrValidation, err)
	}

	taken, err := authRepo.IsUserNameOrEmailTaken(ctx, s.DB, in.UserName, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}

	hash, err := authHelper.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := userModel.UserModel{
		UserName:         in.UserName,
		UserEmail:        in.Email,
		UserPassword:     hash,
		UserFullName:     in.FullName,
		UserIsActive:     true,
		UserRegisteredAt: now,
		UserUpdatedAt:    now,
	}
	user.AddRole(constants.RoleReader)

	if err := authRepo.CreateUser(ctx, s.DB, &user); err != nil {
		// race dengan register lain: unique index yang menolak
		if helper.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	log.Printf("[AUTH][REGISTER] ✅ user=%s (%s)", user.UserName, user.UserID)
	return &user, nil
}

/* ==========================
   LOGIN
========================== */

func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	user, err := authRepo.FindUserByUsernameOrEmail(ctx, s.DB, identifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := authHelper.CheckPasswordHash(user.UserPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.UserIsActive {
		return nil, ErrUserInactive
	}
	return s.issue(user)
}

// LoginGoogle: user baru otomatis dibuat sebagai Lector.
func (s *Service) LoginGoogle(ctx context.Context, idToken string) (*LoginResult, error) {
	if s.Google == nil {
		return nil, ErrGoogleDisabled
	}
	ident, err := s.Google.Verify(idToken)
	if err != nil {
		log.Printf("[AUTH][GOOGLE] token ditolak: %v", err)
		return nil, ErrInvalidGoogleToken
	}

	user, err := authRepo.FindUserByGoogleID(ctx, s.DB, ident.Sub)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.attachGoogleUser(ctx, ident)
	}
	if err != nil {
		return nil, err
	}
	if !user.UserIsActive {
		return nil, ErrUserInactive
	}
	return s.issue(user)
}

// attachGoogleUser: email sudah terdaftar → tautkan google id; kalau belum → buat user baru.
func (s *Service) attachGoogleUser(ctx context.Context, ident *GoogleIdentity) (*userModel.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(ident.Email))
	if email != "" {
		existing, err := authRepo.FindUserByUsernameOrEmail(ctx, s.DB, email)
		if err == nil {
			if err := authRepo.LinkGoogleID(ctx, s.DB, existing.UserID, ident.Sub); err != nil {
				return nil, err
			}
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	hash, err := authHelper.HashPassword(randomPassword())
	if err != nil {
		return nil, err
	}
	sub := ident.Sub
	now := s.now()
	user := userModel.UserModel{
		UserName:         googleUserName(email, sub),
		UserEmail:        email,
		UserPassword:     hash,
		UserFullName:     strings.TrimSpace(ident.Name),
		UserGoogleID:     &sub,
		UserIsActive:     true,
		UserRegisteredAt: now,
		UserUpdatedAt:    now,
	}
	user.AddRole(constants.RoleReader)
	if err := authRepo.CreateUser(ctx, s.DB, &user); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	log.Printf("[AUTH][GOOGLE] 🆕 user=%s", user.UserName)
	return &user, nil
}

func googleUserName(email, sub string) string {
	local := "google"
	if name, _, _ := strings.Cut(email, "@"); name != "" {
		local = helper.Slugify(name, 30)
	}
	if len(sub) > 8 {
		sub = sub[len(sub)-8:]
	}
	return local + "_" + sub
}

func randomPassword() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (s *Service) issue(user *userModel.UserModel) (*LoginResult, error) {
	roles := []string(user.UserRoles)
	token, exp, err := helperAuth.IssueAccessToken(s.Settings(), user.UserID, user.UserName, roles, s.now())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, UserName: user.UserName, Roles: roles, Expiration: exp}, nil
}

/* ==========================
   LOGOUT / ME / PASSWORD
========================== */

// Logout: token dimasukkan blacklist sampai exp-nya. Token yang sudah tidak valid → 401.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: token ausente", helper.ErrUnauthorized)
	}
	settings := s.Settings()
	claims, err := helperAuth.ParseAccessToken(settings, raw)
	if err != nil {
		return fmt.Errorf("%w: token no válido", helper.ErrUnauthorized)
	}
	exp := s.now().Add(settings.TTL)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := authRepo.BlacklistToken(ctx, s.DB, raw, settings.Secret, exp); err != nil {
		return err
	}
	log.Printf("[AUTH][LOGOUT] 👋 user=%s", claims.Subject)
	return nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*userModel.UserModel, error) {
	user, err := authRepo.FindUserByID(ctx, s.DB, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: usuario no encontrado", helper.ErrNotFound)
	}
	return user, err
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := authHelper.CheckPasswordHash(user.UserPassword, current); err != nil {
		return fmt.Errorf("%w: la contraseña actual es incorrecta", helper.ErrValidation)
	}
	if err := authHelper.ValidatePassword(next); err != nil {
		return fmt.Errorf("%w: %v", helper.ErrValidation, err)
	}
	hash, err := authHelper.HashPassword(next)
	if err != nil {
		return err
	}
	return authRepo.UpdateUserPassword(ctx, s.DB, userID, hash)
}
