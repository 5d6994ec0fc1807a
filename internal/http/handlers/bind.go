package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes the body as JSON whatever the Content-Type says; the
// delete button script historically posted JSON as text/plain.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	useJSONFieldNames()

	err := ctx.ShouldBindWith(out, binding.JSON)

	if err != nil {
		if mbe, ok := bodyTooLarge(err); ok {
			RespondPayloadTooLarge(ctx, mbe.Limit)
			return false
		}

		RespondBadRequest(ctx, "Invalid request body", parseBindError(err))

		return false
	}

	return true
}

func parseBindError(err error) interface{} {
	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			fields = append(fields, FieldError{
				Field:   fieldError.Field(),
				Rule:    fieldError.Tag(),
				Param:   fieldError.Param(),
				Message: validationMessage(fieldError.Tag(), fieldError.Param()),
			})
		}
		return gin.H{"fields": fields}
	}

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return gin.H{
			"json": "invalid_json_syntax",
		}
	}

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		return gin.H{
			"json":  "invalid_json_type",
			"field": unmatchedTypeError.Field,
			"fields": []FieldError{
				{
					Field:   unmatchedTypeError.Field,
					Rule:    "type",
					Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
				},
			},
		}
	}

	// final fallback if the error could not be deciphered
	return gin.H{"reason": err.Error()}
}

var registerNames sync.Once

// useJSONFieldNames makes validator report fields by their json key.
func useJSONFieldNames() {
	registerNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return sf.Name
			}
			return name
		})
	})
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
