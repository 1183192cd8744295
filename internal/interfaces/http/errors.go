package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/domain"
)

var errInvalidBody = errors.New("cuerpo inválido")

var validate = validator.New(validator.WithRequiredStructEnabled())

// statusByKind traduce el código estable del error a HTTP.
var statusByKind = map[string]int{
	domain.KindUnauthorized:             fiber.StatusForbidden,
	domain.KindNotFound:                 fiber.StatusNotFound,
	domain.KindInvalidInput:             fiber.StatusBadRequest,
	domain.KindInvalidMovement:          fiber.StatusUnprocessableEntity,
	domain.KindInsufficientStock:        fiber.StatusConflict,
	domain.KindPartialFulfillmentDenied: fiber.StatusConflict,
	domain.KindInvalidTransition:        fiber.StatusConflict,
	domain.KindDuplicate:                fiber.StatusConflict,
	domain.KindConcurrencyConflict:      fiber.StatusConflict,
	domain.KindStorageFault:             fiber.StatusServiceUnavailable,
}

// bind parsea el body JSON y lo valida con las etiquetas validate del DTO.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return validate.Struct(out)
}

// writeError responde con dto.ErrorResponse. Los errores de almacenamiento no exponen el detalle.
func writeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errInvalidBody) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    domain.KindInvalidInput,
			Message: "campos inválidos: " + strings.Join(fields, ", "),
		})
	}

	kind := domain.Kind(err)
	status, ok := statusByKind[kind]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: domain.KindInternal, Message: "error interno"})
	}
	msg := err.Error()
	if kind == domain.KindStorageFault {
		msg = "almacenamiento no disponible, reintente"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: kind, Message: msg})
}

func pageParams(c *fiber.Ctx) (int, int) {
	return c.QueryInt("limit", 20), c.QueryInt("offset", 0)
}
