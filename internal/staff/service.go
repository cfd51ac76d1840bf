package staff

import (
	"context"
	"strings"

	"github.com/google/uuid"

	pkgauth "github.com/syed-hamad/Retail-POS-sub001/pkg/auth"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// RegisterInput bootstraps a new seller with its first owner account.
type RegisterInput struct {
	BusinessName string
	StaffName    string
	PIN          string
}

// CreateInput adds a staff account to an existing seller.
type CreateInput struct {
	Name string
	Role enums.StaffRole
	PIN  string
}

// Service exposes staff management and PIN authentication.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (Public, error)
	Authenticate(ctx context.Context, sellerID, name, pin string) (session.Session, error)
	Create(ctx context.Context, sess session.Session, input CreateInput) (Public, error)
	List(ctx context.Context, sess session.Session) ([]Public, error)
	SetActive(ctx context.Context, sess session.Session, id string, active bool) (Public, error)
}

type service struct {
	repo *Repository
}

// NewService builds the staff service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff repo is required")
	}
	return &service{repo: repo}, nil
}

// Register creates a fresh seller id and its owner account.
func (s *service) Register(ctx context.Context, input RegisterInput) (Public, error) {
	name := strings.TrimSpace(input.StaffName)
	if strings.TrimSpace(input.BusinessName) == "" || name == "" {
		return Public{}, pkgerrors.New(pkgerrors.CodeValidation, "business and staff names are required")
	}
	hash, err := pkgauth.HashPIN(input.PIN)
	if err != nil {
		return Public{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pin")
	}

	member := Staff{
		SellerID: uuid.NewString(),
		Name:     name,
		Role:     enums.StaffRoleOwner,
		PINHash:  hash,
		Active:   true,
	}
	id, err := s.repo.Create(ctx, member)
	if err != nil {
		return Public{}, err
	}
	member.ID = id
	return member.Public(), nil
}

// Authenticate verifies the PIN and returns the session the token should
// carry. Unknown names and wrong PINs are indistinguishable to the caller.
func (s *service) Authenticate(ctx context.Context, sellerID, name, pin string) (session.Session, error) {
	sellerID = strings.TrimSpace(sellerID)
	name = strings.TrimSpace(name)
	if sellerID == "" || name == "" || pin == "" {
		return session.Session{}, pkgerrors.New(pkgerrors.CodeValidation, "seller, name, and pin are required")
	}

	member, err := s.repo.FindByName(ctx, sellerID, name)
	if err != nil {
		if pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
			return session.Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return session.Session{}, err
	}
	if !member.Active || !pkgauth.VerifyPIN(pin, member.PINHash) {
		return session.Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return session.Session{SellerID: member.SellerID, UserID: member.ID, Role: member.Role}, nil
}

// Create adds a staff account under the caller's seller.
func (s *service) Create(ctx context.Context, sess session.Session, input CreateInput) (Public, error) {
	if !sess.Can(enums.PermissionSettingsWrite) {
		return Public{}, pkgerrors.New(pkgerrors.CodeForbidden, "staff changes require settings permission")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Public{}, pkgerrors.New(pkgerrors.CodeValidation, "staff name is required")
	}
	if !input.Role.IsValid() {
		return Public{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}
	hash, err := pkgauth.HashPIN(input.PIN)
	if err != nil {
		return Public{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pin")
	}
	if _, err := s.repo.FindByName(ctx, sess.SellerID, name); err == nil {
		return Public{}, pkgerrors.New(pkgerrors.CodeConflict, "staff name already in use")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		return Public{}, err
	}

	member := Staff{
		SellerID: sess.SellerID,
		Name:     name,
		Role:     input.Role,
		PINHash:  hash,
		Active:   true,
	}
	id, err := s.repo.Create(ctx, member)
	if err != nil {
		return Public{}, err
	}
	member.ID = id
	return member.Public(), nil
}

// List returns the seller's staff accounts without credential material.
func (s *service) List(ctx context.Context, sess session.Session) ([]Public, error) {
	members, err := s.repo.List(ctx, sess.SellerID)
	if err != nil {
		return nil, err
	}
	out := make([]Public, 0, len(members))
	for _, member := range members {
		out = append(out, member.Public())
	}
	return out, nil
}

// SetActive enables or disables a staff account.
func (s *service) SetActive(ctx context.Context, sess session.Session, id string, active bool) (Public, error) {
	if !sess.Can(enums.PermissionSettingsWrite) {
		return Public{}, pkgerrors.New(pkgerrors.CodeForbidden, "staff changes require settings permission")
	}
	member, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return Public{}, err
	}
	if member.SellerID != sess.SellerID {
		return Public{}, pkgerrors.New(pkgerrors.CodeNotFound, "staff account not found")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"active": active}); err != nil {
		return Public{}, err
	}
	member, err = s.repo.Fetch(ctx, id)
	if err != nil {
		return Public{}, err
	}
	return member.Public(), nil
}
