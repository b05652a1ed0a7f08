package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
	"github.com/SinaHo/investment-backend/internal/upload"
)

// DefaultTelegramLink is served until an admin configures a group link.
const DefaultTelegramLink = "https://t.me/+YourGroupLinkHere"

// MethodInput is a create or partial update of a payment method; nil means unchanged.
type MethodInput struct {
	Type              *string `json:"type" form:"type"`
	Name              *string `json:"name" form:"name"`
	UPIID             *string `json:"upiId" form:"upiId"`
	QRCodeURL         *string `json:"qrCodeUrl" form:"qrCodeUrl"`
	BankAccountNumber *string `json:"bankAccountNumber" form:"bankAccountNumber"`
	BankIFSC          *string `json:"bankIfsc" form:"bankIfsc"`
	BankName          *string `json:"bankName" form:"bankName"`
	AccountHolderName *string `json:"accountHolderName" form:"accountHolderName"`
	Instructions      *string `json:"instructions" form:"instructions"`
	IsActive          *bool   `json:"isActive" form:"isActive"`
	SortOrder         *int    `json:"sortOrder" form:"sortOrder"`
}

// ConfigInput is a partial update of the deposit configuration.
type ConfigInput struct {
	UPIID               *string `json:"upiId"`
	QRCodeURL           *string `json:"qrCodeUrl"`
	BankAccountNumber   *string `json:"bankAccountNumber"`
	BankIFSC            *string `json:"bankIfsc"`
	BankName            *string `json:"bankName"`
	AccountHolderName   *string `json:"accountHolderName"`
	DepositInstructions *string `json:"depositInstructions"`
	IsActive            *bool   `json:"isActive"`
}

type PaymentService interface {
	ListMethods(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error)
	CreateMethod(ctx context.Context, in MethodInput, qr io.Reader) (*model.PaymentMethod, error)
	UpdateMethod(ctx context.Context, id uuid.UUID, in MethodInput, qr io.Reader) (*model.PaymentMethod, error)
	DeleteMethod(ctx context.Context, id uuid.UUID) error

	GetConfig(ctx context.Context) (*model.PaymentConfig, error)
	SaveConfig(ctx context.Context, in ConfigInput) (*model.PaymentConfig, error)
	TelegramLink(ctx context.Context) string
	SetTelegramLink(ctx context.Context, link string) error
}

type paymentService struct {
	store   repository.Store
	uploads upload.Store
	logger  *zap.SugaredLogger
}

func NewPaymentService(store repository.Store, uploads upload.Store, logger *zap.SugaredLogger) PaymentService {
	return &paymentService{store: store, uploads: uploads, logger: logger}
}

func (s *paymentService) ListMethods(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	return s.store.PaymentMethods().List(ctx, activeOnly)
}

func (s *paymentService) CreateMethod(ctx context.Context, in MethodInput, qr io.Reader) (*model.PaymentMethod, error) {
	if in.Type == nil || !model.PaymentMethodType(*in.Type).Valid() {
		return nil, apperr.Invalid("Payment method type must be one of google_pay, phone_pe, paytm, bank_transfer")
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Invalid("Name is required")
	}
	m := &model.PaymentMethod{IsActive: true}
	applyMethod(m, in)
	if qr != nil {
		path, err := s.uploads.SaveImage(qr, "qr")
		if err != nil {
			return nil, err
		}
		m.QRCodeURL = &path
	}
	if err := s.store.PaymentMethods().Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *paymentService) UpdateMethod(ctx context.Context, id uuid.UUID, in MethodInput, qr io.Reader) (*model.PaymentMethod, error) {
	if in.Type != nil && !model.PaymentMethodType(*in.Type).Valid() {
		return nil, apperr.Invalid("Payment method type must be one of google_pay, phone_pe, paytm, bank_transfer")
	}
	m, err := s.store.PaymentMethods().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("Payment method not found")
	}
	// An empty URL keeps the current QR code.
	if in.QRCodeURL != nil && strings.TrimSpace(*in.QRCodeURL) == "" {
		in.QRCodeURL = nil
	}
	applyMethod(m, in)
	if qr != nil {
		path, err := s.uploads.SaveImage(qr, "qr")
		if err != nil {
			return nil, err
		}
		m.QRCodeURL = &path
	}
	if err := s.store.PaymentMethods().Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func applyMethod(m *model.PaymentMethod, in MethodInput) {
	if in.Type != nil {
		m.Type = model.PaymentMethodType(*in.Type)
	}
	setString(&m.Name, in.Name)
	setOptional(&m.UPIID, in.UPIID)
	setOptional(&m.QRCodeURL, in.QRCodeURL)
	setOptional(&m.BankAccountNumber, in.BankAccountNumber)
	setOptional(&m.BankIFSC, in.BankIFSC)
	setOptional(&m.BankName, in.BankName)
	setOptional(&m.AccountHolderName, in.AccountHolderName)
	setOptional(&m.Instructions, in.Instructions)
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		m.SortOrder = *in.SortOrder
	}
}

func (s *paymentService) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	ok, err := s.store.PaymentMethods().Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Payment method not found")
	}
	return nil
}

// GetConfig returns the deposit configuration, or an empty one before it is saved.
func (s *paymentService) GetConfig(ctx context.Context) (*model.PaymentConfig, error) {
	cfg, err := s.store.PaymentConfig().Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &model.PaymentConfig{ID: 1, IsActive: true}, nil
	}
	return cfg, nil
}

func (s *paymentService) SaveConfig(ctx context.Context, in ConfigInput) (*model.PaymentConfig, error) {
	var out *model.PaymentConfig
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		cfg, err := tx.PaymentConfig().Get(ctx)
		if err != nil {
			return err
		}
		if cfg == nil {
			cfg = &model.PaymentConfig{IsActive: true}
		}
		setOptional(&cfg.UPIID, in.UPIID)
		setOptional(&cfg.QRCodeURL, in.QRCodeURL)
		setOptional(&cfg.BankAccountNumber, in.BankAccountNumber)
		setOptional(&cfg.BankIFSC, in.BankIFSC)
		setOptional(&cfg.BankName, in.BankName)
		setOptional(&cfg.AccountHolderName, in.AccountHolderName)
		setOptional(&cfg.DepositInstructions, in.DepositInstructions)
		if in.IsActive != nil {
			cfg.IsActive = *in.IsActive
		}
		out = cfg
		return tx.PaymentConfig().Upsert(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// instructions decodes deposit_instructions, treating non-JSON text as empty.
func instructions(cfg *model.PaymentConfig) map[string]any {
	out := map[string]any{}
	if cfg == nil || cfg.DepositInstructions == nil {
		return out
	}
	if err := json.Unmarshal([]byte(*cfg.DepositInstructions), &out); err != nil {
		return map[string]any{}
	}
	return out
}

func (s *paymentService) TelegramLink(ctx context.Context) string {
	cfg, err := s.store.PaymentConfig().Get(ctx)
	if err != nil {
		s.logger.Warnw("load payment config, using default telegram link", "error", err)
		return DefaultTelegramLink
	}
	if link, ok := instructions(cfg)["telegram_group_link"].(string); ok && link != "" {
		return link
	}
	return DefaultTelegramLink
}

func (s *paymentService) SetTelegramLink(ctx context.Context, link string) error {
	link = strings.TrimSpace(link)
	if !strings.Contains(link, "t.me") {
		return apperr.Invalid("Valid Telegram group link is required")
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		cfg, err := tx.PaymentConfig().Get(ctx)
		if err != nil {
			return err
		}
		if cfg == nil {
			cfg = &model.PaymentConfig{IsActive: true}
		}
		merged := instructions(cfg)
		merged["telegram_group_link"] = link
		raw, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		cfg.DepositInstructions = model.StrPtr(string(raw))
		return tx.PaymentConfig().Upsert(ctx, cfg)
	})
}
