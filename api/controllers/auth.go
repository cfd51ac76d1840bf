package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/syed-hamad/Retail-POS-sub001/api/responses"
	"github.com/syed-hamad/Retail-POS-sub001/api/validators"
	"github.com/syed-hamad/Retail-POS-sub001/internal/staff"
	pkgauth "github.com/syed-hamad/Retail-POS-sub001/pkg/auth"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/config"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

// SessionWriter is the slice of the session manager the auth endpoints use.
type SessionWriter interface {
	Create(ctx context.Context, accessID string, sess session.Session) error
	Revoke(ctx context.Context, accessID string) error
}

type loginRequest struct {
	SellerID string `json:"sellerId" validate:"required"`
	Name     string `json:"name" validate:"required"`
	PIN      string `json:"pin" validate:"required"`
}

type registerRequest struct {
	BusinessName string `json:"businessName" validate:"required"`
	Name         string `json:"name" validate:"required"`
	PIN          string `json:"pin" validate:"required"`
}

type tokenResponse struct {
	AccessToken string       `json:"accessToken"`
	Staff       staff.Public `json:"staff"`
}

func issueToken(ctx context.Context, cfg config.JWTConfig, sessions SessionWriter, sess session.Session) (string, error) {
	accessID := uuid.NewString()
	token, err := pkgauth.MintAccessToken(cfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   sess.UserID,
		SellerID: sess.SellerID,
		Role:     sess.Role,
		JTI:      accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := sessions.Create(ctx, accessID, sess); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}
	return token, nil
}

// AuthLogin verifies a staff PIN and issues an access token.
func AuthLogin(svc staff.Service, sessions SessionWriter, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.Authenticate(r.Context(), body.SellerID, body.Name, body.PIN)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := issueToken(r.Context(), cfg, sessions, sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tokenResponse{
			AccessToken: token,
			Staff:       staff.Public{ID: sess.UserID, SellerID: sess.SellerID, Name: body.Name, Role: sess.Role, Active: true},
		})
	}
}

// AuthRegister bootstraps a new seller with its owner account and logs it in.
func AuthRegister(svc staff.Service, sessions SessionWriter, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		owner, err := svc.Register(r.Context(), staff.RegisterInput{
			BusinessName: body.BusinessName,
			StaffName:    body.Name,
			PIN:          body.PIN,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := session.Session{SellerID: owner.SellerID, UserID: owner.ID, Role: owner.Role}
		token, err := issueToken(r.Context(), cfg, sessions, sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, tokenResponse{AccessToken: token, Staff: owner})
	}
}

// AuthLogout revokes the session tied to the presented access token.
func AuthLogout(sessions SessionWriter, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		token, err := validators.BearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claims, err := pkgauth.ParseAccessToken(cfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}
		if claims.ID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := sessions.Revoke(r.Context(), claims.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
