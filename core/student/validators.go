package student

import (
	"fmt"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/florescendo/talentos/core"
)

var (
	classTag  = "turma"
	classText = fmt.Sprintf("{0} deve ser um de: %q, %q, %q", ClassFirstYear, ClassSecondYear, ClassUnknown)

	statusVectorTag  = "statusaulas"
	statusVectorText = "{0} deve conter exatamente %d posições com valores 0 ou 1"
)

// InitValidators registers the student validation tags. `sessions` is the number of aulas in the course,
// with the same fallback as NewService.
func InitValidators(validate *validator.Validate, translator ut.Translator, sessions int) {
	sessions = sessionCount(sessions)

	_ = validate.RegisterValidation(classTag, classValidation)
	core.RegisterCustomTranslation(validate, translator, classTag, classText)

	_ = validate.RegisterValidation(statusVectorTag, statusVectorValidation(sessions))
	core.RegisterCustomTranslation(validate, translator, statusVectorTag, fmt.Sprintf(statusVectorText, sessions))
}

func classValidation(fl validator.FieldLevel) bool {
	return IsValidClass(fl.Field().String())
}

// statusVectorValidation only allows []int of length `sessions` holding 0s and 1s.
func statusVectorValidation(sessions int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Slice || field.Len() != sessions {
			return false
		}
		for i := 0; i < field.Len(); i++ {
			switch elem := field.Index(i); elem.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				if v := elem.Int(); v != 0 && v != 1 {
					return false
				}
			default:
				return false
			}
		}
		return true
	}
}
