//go:build unit
// +build unit

package sqlargon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type registryWidget struct {
	UUIDModel
	Name string
}

func TestRegisterAndRegisteredModels(t *testing.T) {
	before := len(RegisteredModels())

	Register(&registryWidget{})

	models := RegisteredModels()
	assert.Len(t, models, before+1)
	assert.IsType(t, &registryWidget{}, models[len(models)-1])

	// the returned slice is a copy
	models[len(models)-1] = nil
	assert.NotNil(t, RegisteredModels()[len(models)-1])
}
