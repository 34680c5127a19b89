package controllers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/restaurant-till/models"
)

var registerOnce sync.Once

// RegisterValidators adds the payment_method binding rule to gin's
// validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
			return models.IsKnownPaymentMethod(fl.Field().String())
		})
	})
}
