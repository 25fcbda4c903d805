package validation

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

// Struct valida tags `validate:"..."`. El validator cachea metadata por tipo,
// así que se comparte una sola instancia.
func Struct(s any) error {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
	})
	return v.Struct(s)
}
