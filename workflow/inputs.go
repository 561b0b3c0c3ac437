package workflow

import (
	"strings"
	"time"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateStruct(input any) error {
	if err := validate.Struct(input); err != nil {
		return &utils.ValidationError{Fields: utils.ProcessValidationErrors(err)}
	}
	return nil
}

type NewLiquidityAccount struct {
	Name     string             `json:"name" validate:"required,max=100"`
	Type     models.AccountType `json:"type" validate:"required,oneof=checking savings cash other"`
	Balance  decimal.Decimal    `json:"balance"`
	Currency string             `json:"currency" validate:"omitempty,len=3"`
	IsActive *bool              `json:"isActive"`
}

func (input *NewLiquidityAccount) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	return validateStruct(input)
}

// UpdateLiquidityAccount carries only the fields present in the request.
// A nil Balance means the balance was not part of the update.
type UpdateLiquidityAccount struct {
	Name     *string             `json:"name" validate:"omitempty,min=1,max=100"`
	Type     *models.AccountType `json:"type" validate:"omitempty,oneof=checking savings cash other"`
	Balance  *decimal.Decimal    `json:"balance"`
	IsActive *bool               `json:"isActive"`
}

func (input *UpdateLiquidityAccount) validate() error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	return validateStruct(input)
}

type OnboardingAccount struct {
	Name    string             `json:"name" validate:"required,max=100"`
	Type    models.AccountType `json:"type" validate:"required,oneof=checking savings cash other"`
	Balance decimal.Decimal    `json:"balance"`
}

type OnboardingInput struct {
	PrimaryCurrency   string              `json:"primaryCurrency" validate:"omitempty,len=3"`
	LiquidityAccounts []OnboardingAccount `json:"liquidityAccounts" validate:"required,min=1,dive"`
}

func (input *OnboardingInput) validate() error {
	if err := validateStruct(input); err != nil {
		return err
	}
	for _, account := range input.LiquidityAccounts {
		if account.Balance.IsNegative() {
			return utils.NewValidationError("balance", "must be greater than or equal to 0")
		}
	}
	return nil
}

type NewTransaction struct {
	Type                   models.TransactionType `json:"type" validate:"required,oneof=income expense transfer"`
	Amount                 decimal.Decimal        `json:"amount"`
	AccountId              string                 `json:"accountId"`
	DestinationAccountId   *string                `json:"destinationAccountId"`
	IsExternalAccount      bool                   `json:"isExternalAccount"`
	CategoryId             *string                `json:"categoryId"`
	Currency               string                 `json:"currency" validate:"omitempty,len=3"`
	Date                   *time.Time             `json:"date"`
	Description            string                 `json:"description" validate:"max=1000"`
	RecurringTransactionId *string                `json:"recurringTransactionId"`
	Tags                   []string               `json:"tags" validate:"max=20,dive,max=50"`
}

// validate checks the shape of the request. Ledger checks (account existence,
// same-account transfers) happen inside the unit.
func (input *NewTransaction) validate() error {
	if err := validateStruct(input); err != nil {
		return err
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than 0")
	}
	input.AccountId = strings.TrimSpace(input.AccountId)
	if input.AccountId == "" {
		return utils.NewValidationError("accountId", "required")
	}
	if input.DestinationAccountId != nil && strings.TrimSpace(*input.DestinationAccountId) == "" {
		input.DestinationAccountId = nil
	}
	if input.CategoryId != nil && strings.TrimSpace(*input.CategoryId) == "" {
		input.CategoryId = nil
	}
	if input.Type != models.TransactionTypeTransfer {
		input.DestinationAccountId = nil
		input.IsExternalAccount = false
	}
	return nil
}
