package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
	"github.com/SinaHo/investment-backend/internal/upload"
)

type ProfileUpdate struct {
	FullName     *string `json:"fullName"`
	Phone        *string `json:"phone"`
	ProfilePhoto *string `json:"profilePhoto"`
}

type PayoutUpdate struct {
	UPIID             *string `json:"upiId"`
	AccountHolderName *string `json:"accountHolderName"`
	AccountNumber     *string `json:"accountNumber"`
	IFSCCode          *string `json:"ifscCode"`
	BankName          *string `json:"bankName"`
}

type ProfileService interface {
	Update(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*model.User, error)
	UploadPhoto(ctx context.Context, userID uuid.UUID, photo io.Reader) (string, error)
	UpdatePayout(ctx context.Context, userID uuid.UUID, in PayoutUpdate) (*model.User, error)
}

type profileService struct {
	store   repository.Store
	uploads upload.Store
}

func NewProfileService(store repository.Store, uploads upload.Store) ProfileService {
	return &profileService{store: store, uploads: uploads}
}

func (s *profileService) mutate(ctx context.Context, userID uuid.UUID, fn func(u *model.User)) (*model.User, error) {
	var out *model.User
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("User not found")
		}
		fn(u)
		out = u
		return tx.Users().Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*model.User, error) {
	return s.mutate(ctx, userID, func(u *model.User) {
		setString(&u.FullName, in.FullName)
		setString(&u.Phone, in.Phone)
		setOptional(&u.ProfilePhoto, in.ProfilePhoto)
	})
}

func (s *profileService) UploadPhoto(ctx context.Context, userID uuid.UUID, photo io.Reader) (string, error) {
	if photo == nil {
		return "", apperr.Invalid("No file uploaded")
	}
	path, err := s.uploads.SaveImage(photo, "photo")
	if err != nil {
		return "", err
	}
	if _, err := s.mutate(ctx, userID, func(u *model.User) { u.ProfilePhoto = &path }); err != nil {
		return "", err
	}
	return path, nil
}

func (s *profileService) UpdatePayout(ctx context.Context, userID uuid.UUID, in PayoutUpdate) (*model.User, error) {
	return s.mutate(ctx, userID, func(u *model.User) {
		setOptional(&u.UPIID, in.UPIID)
		setOptional(&u.AccountHolderName, in.AccountHolderName)
		setOptional(&u.AccountNumber, in.AccountNumber)
		setOptional(&u.IFSCCode, in.IFSCCode)
		setOptional(&u.BankName, in.BankName)
	})
}
