package scene

import "github.com/vk/sceneforge/internal/schema"

// attachMaterial applies a material spec to every leaf drawable within a
// node. Containers are descended; curves and fields have no surface and are
// left alone. Drawables that already carry a material keep it: the innermost
// assignment wins.
func attachMaterial(n Node, mat *schema.Material, name string) {
	switch node := n.(type) {
	case *Drawable:
		if node.Material == nil {
			node.Material = mat
			node.MaterialName = name
		}
	case *Container:
		for _, child := range node.Children {
			attachMaterial(child, mat, name)
		}
	}
}
