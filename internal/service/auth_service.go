package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"perry-be/internal/dto"
	"perry-be/internal/entity"
	"perry-be/internal/pkg/logger"
	"perry-be/internal/pkg/mailer"
	"perry-be/internal/repository/specification"
	"perry-be/internal/repository/unitofwork"

	"perry-be/pkg/events"
	pktNats "perry-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	sessionService ISessionService
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	sessionService ISessionService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		sessionService: sessionService,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

// displayNameFor falls back to the email local part so the assistant
// always has something to call the user that is not the full address.
func displayNameFor(req *dto.RegisterRequest) string {
	name := strings.TrimSpace(req.DisplayName)
	if name != "" {
		return name
	}
	if at := strings.Index(req.Email, "@"); at > 0 {
		return req.Email[:at]
	}
	return req.Email
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	// 1. Check for existing user
	existing, _ := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	// 3. Create User Entity
	user := &entity.User{
		Id:            uuid.New(),
		Email:         req.Email,
		DisplayName:   displayNameFor(req),
		PasswordHash:  &hashStr,
		Status:        entity.UserStatusPending,
		EmailVerified: false,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	// 4. Save to DB
	// Use transaction for user + token creation safety
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	// 5. Generate and save OTP
	otpCode, err := generateOTP()
	if err != nil {
		return nil, err
	}

	verificationToken := &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     otpCode,
		ExpiresAt: time.Now().Add(15 * time.Minute),
		CreatedAt: time.Now(),
	}

	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, verificationToken); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// SEND REAL EMAIL
	go func() {
		emailErr := s.emailService.SendOTP(user.Email, otpCode)
		if emailErr != nil {
			s.log.Error("auth", "failed to send registration email", map[string]interface{}{
				"error": emailErr.Error(),
			})
		}
	}()

	if s.eventPublisher != nil {
		evt := events.NewUserRegistered(user.Id.String(), user.Email)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("auth", "failed to publish USER_REGISTERED event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return errors.New("user not found")
	}

	if user.Status == entity.UserStatusActive {
		return nil
	}

	tokenEntity, err := uow.UserRepository().FindEmailVerificationToken(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByToken{Token: req.Token},
	)
	if err != nil {
		return errors.New("invalid otp code")
	}
	if tokenEntity == nil {
		return errors.New("invalid otp code")
	}

	if time.Now().After(tokenEntity.ExpiresAt) {
		return errors.New("otp code expired")
	}

	// Activate
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().ActivateUser(ctx, user.Id); err != nil {
		return err
	}

	_ = uow.UserRepository().DeleteEmailVerificationToken(ctx, tokenEntity.Id)

	return uow.Commit()
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	// 1. Check if user exists
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, errors.New("invalid credentials")
	}
	if user == nil {
		return nil, errors.New("invalid credentials")
	}

	if user.PasswordHash == nil {
		return nil, errors.New("invalid credentials")
	}

	// 2. SECURITY CHECK: Check if email is verified
	if user.Status == entity.UserStatusPending || !user.EmailVerified {
		return nil, errors.New("email not verified. please check your inbox for the otp code")
	}

	// 3. Compare passwords
	err = bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password))
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	// 4. Check if user is blocked/suspended
	if user.Status == entity.UserStatusBlocked {
		return nil, errors.New("user account is blocked")
	}

	// 5. Generate JWT
	signedToken, err := signAccessToken(user.Id)
	if err != nil {
		return nil, err
	}

	var rawRefreshToken string

	// Only mint a refresh token when "Remember Me" is checked
	if req.RememberMe {
		rawRefreshToken = uuid.New().String()

		// Hash token
		hasher := sha256.New()
		hasher.Write([]byte(rawRefreshToken))
		tokenHash := hex.EncodeToString(hasher.Sum(nil))

		refreshTokenEntity := &entity.UserRefreshToken{
			Id:        uuid.New(),
			UserId:    user.Id,
			TokenHash: tokenHash,
			ExpiresAt: time.Now().Add(time.Hour * 24 * 30),
			Revoked:   false,
			CreatedAt: time.Now(),
			IpAddress: ipAddress,
			UserAgent: userAgent,
		}

		err = uow.UserRepository().CreateRefreshToken(ctx, refreshTokenEntity)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %v", err)
		}
	}

	// A signed-in user always has an active session to land in.
	if s.sessionService != nil {
		if _, err := s.sessionService.EnsureActiveSession(ctx, user.Id); err != nil {
			s.log.Warn("auth", "failed to ensure active session", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// PUBLISH EVENT
	if s.eventPublisher != nil {
		evt := events.NewUserLogin(user.Id.String())
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("auth", "failed to publish USER_LOGIN event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return &dto.LoginResponse{
		AccessToken:  signedToken,
		RefreshToken: rawRefreshToken,
		User: dto.UserDTO{
			Id:          user.Id,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
	}, nil
}

func signAccessToken(userId uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	return token.SignedString([]byte(secret))
}

// Refresh exchanges a live refresh token for a fresh access token. The
// refresh token itself is untouched; it keeps its original expiry.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	if refreshToken == "" {
		return nil, errors.New("invalid refresh token")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	hasher := sha256.New()
	hasher.Write([]byte(refreshToken))
	tokenHash := hex.EncodeToString(hasher.Sum(nil))

	tokenEntity, err := uow.UserRepository().FindRefreshToken(ctx, specification.ByTokenHash{Hash: tokenHash})
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if tokenEntity == nil || tokenEntity.Revoked || time.Now().After(tokenEntity.ExpiresAt) {
		return nil, errors.New("invalid refresh token")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: tokenEntity.UserId})
	if err != nil || user == nil {
		return nil, errors.New("invalid refresh token")
	}
	if user.Status == entity.UserStatusBlocked {
		return nil, errors.New("user account is blocked")
	}

	signedToken, err := signAccessToken(user.Id)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshTokenResponse{AccessToken: signedToken}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	hasher := sha256.New()
	hasher.Write([]byte(refreshToken))
	tokenHash := hex.EncodeToString(hasher.Sum(nil))

	tokenEntity, err := uow.UserRepository().FindRefreshToken(ctx, specification.ByTokenHash{Hash: tokenHash})
	if err != nil || tokenEntity == nil {
		return nil
	}

	return uow.UserRepository().RevokeRefreshToken(ctx, tokenEntity.Id)
}
