package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type periodInput struct {
	Period  string `validate:"omitempty,period"`
	Product string `validate:"omitempty,no_xss"`
}

func TestInitValidator_Idempotent(t *testing.T) {
	InitValidator()
	first := Validate
	InitValidator()
	assert.Same(t, first, Validate)
}

func TestValidatePeriod(t *testing.T) {
	InitValidator()

	for _, p := range []string{"", "daily", "WEEKLY", "Monthly"} {
		assert.NoError(t, Validate.Struct(periodInput{Period: p}), p)
	}
	for _, p := range []string{"yearly", "day", "hourly"} {
		assert.Error(t, Validate.Struct(periodInput{Period: p}), p)
	}
}

func TestValidateNoXSS(t *testing.T) {
	InitValidator()

	assert.NoError(t, Validate.Struct(periodInput{Product: "BOX PERRO POLLO"}))
	assert.Error(t, Validate.Struct(periodInput{Product: "<script>alert(1)</script>"}))
}
