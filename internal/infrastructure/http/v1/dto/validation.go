package dto

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/orders"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags used in binding rules
// (money, qcstatus, itemtype, strategy) to gin's validator.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		rules := map[string]validator.Func{
			"money":    validMoney,
			"qcstatus": validQCStatus,
			"itemtype": validItemType,
			"strategy": validStrategy,
		}
		for tag, fn := range rules {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}

func validMoney(fl validator.FieldLevel) bool {
	m, err := types.NewMoneyFromString(fl.Field().String())
	return err == nil && !m.IsNegative()
}

func validQCStatus(fl validator.FieldLevel) bool {
	s := entity.QCStatus(fl.Field().String())
	return s != "" && s.Valid()
}

func validItemType(fl validator.FieldLevel) bool {
	return entity.ItemType(fl.Field().String()).Valid()
}

func validStrategy(fl validator.FieldLevel) bool {
	return orders.Strategy(fl.Field().String()).Valid()
}

// BindingError converts a bind failure into a validation error listing the
// offending fields and the rule each one broke.
func BindingError(err error, message string) *apperror.AppError {
	appErr := apperror.NewValidation(message)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return appErr.WithDetail("fields", fields)
	}
	return appErr.WithDetail("error", err.Error())
}

func parseMoney(field, value string) (types.Money, error) {
	if value == "" {
		return types.Zero(), nil
	}
	m, err := types.NewMoneyFromString(value)
	if err != nil {
		return types.Zero(), apperror.NewValidation("invalid amount").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return m, nil
}
