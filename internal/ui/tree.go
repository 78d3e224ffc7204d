package ui

import (
	"github.com/disiqueira/gotree/v3"

	"github.com/starford/mad/internal/models"
)

// RenderTree draws the tag tree below root with label as the top line.
func RenderTree(label string, root *models.TagNode) string {
	t := gotree.New(label)
	addChildren(t, root)
	return t.Print()
}

func addChildren(t gotree.Tree, node *models.TagNode) {
	for _, name := range node.ChildNames() {
		addChildren(t.Add(name), node.Child(name))
	}
}
