package app

import (
	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/modules/curves"
	"github.com/vk/sceneforge/modules/distribute"
	"github.com/vk/sceneforge/modules/paths"
	"github.com/vk/sceneforge/modules/shapes"
)

// coreModules is the definitive list of all modules that are compiled into
// the sceneforge binary.
var coreModules = []registry.Module{
	&shapes.Module{},
	&curves.Module{},
	&paths.Module{},
	&distribute.Module{},
}
