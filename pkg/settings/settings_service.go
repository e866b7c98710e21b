package settings

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/pkg/jwt"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"
)

type (
	SettingsService interface {
		GetMode(ctx context.Context) (domain.ModeResponse, error)
		SetMode(ctx context.Context, req domain.SetModeRequest) (domain.ModeResponse, error)
		StartSession(ctx context.Context, req domain.SessionRequest) (domain.SessionResponse, error)
		ActiveRole(ctx context.Context) (domain.UserRole, error)
	}

	settingsService struct {
		stateService state.StateService
		jwtService   jwt.JWTService
		// pinHashes holds bcrypt hashes per role. A role without a hash needs no PIN.
		pinHashes map[domain.UserRole]string
	}
)

func NewSettingsService(stateService state.StateService, jwtService jwt.JWTService, pinHashes map[domain.UserRole]string) SettingsService {
	if pinHashes == nil {
		pinHashes = map[domain.UserRole]string{}
	}
	return &settingsService{
		stateService: stateService,
		jwtService:   jwtService,
		pinHashes:    pinHashes,
	}
}

func (s *settingsService) GetMode(ctx context.Context) (domain.ModeResponse, error) {
	mode := domain.ModeNormal
	if err := s.stateService.Load(ctx, state.DocOptimizationMode, &mode); err != nil {
		return domain.ModeResponse{}, err
	}
	if !mode.Valid() {
		mode = domain.ModeNormal
	}
	return domain.ModeResponse{Mode: mode, Factor: mode.Factor()}, nil
}

func (s *settingsService) SetMode(ctx context.Context, req domain.SetModeRequest) (domain.ModeResponse, error) {
	if !req.Mode.Valid() {
		return domain.ModeResponse{}, domain.ErrInvalidMode
	}
	if err := s.stateService.Save(ctx, state.DocOptimizationMode, req.Mode); err != nil {
		return domain.ModeResponse{}, err
	}
	log.Infof("optimization mode set to %s", req.Mode)
	return domain.ModeResponse{Mode: req.Mode, Factor: req.Mode.Factor()}, nil
}

func (s *settingsService) StartSession(ctx context.Context, req domain.SessionRequest) (domain.SessionResponse, error) {
	if !req.Role.Valid() {
		return domain.SessionResponse{}, domain.ErrInvalidRole
	}
	if err := s.checkPin(req.Role, req.Pin); err != nil {
		return domain.SessionResponse{}, err
	}

	token, err := s.jwtService.GenerateRoleToken(req.Role)
	if err != nil {
		return domain.SessionResponse{}, err
	}
	if err := s.stateService.Save(ctx, state.DocActiveRole, req.Role); err != nil {
		return domain.SessionResponse{}, err
	}
	return domain.SessionResponse{Token: token, Role: req.Role}, nil
}

func (s *settingsService) ActiveRole(ctx context.Context) (domain.UserRole, error) {
	role := domain.RoleStudent
	if err := s.stateService.Load(ctx, state.DocActiveRole, &role); err != nil {
		return "", err
	}
	return role, nil
}

func (s *settingsService) checkPin(role domain.UserRole, pin string) error {
	if role == domain.RoleStudent {
		return nil
	}
	hash, ok := s.pinHashes[role]
	if !ok || hash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrInvalidPin
		}
		return err
	}
	return nil
}
