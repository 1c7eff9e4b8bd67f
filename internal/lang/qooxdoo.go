package lang

import (
	"github.com/smacker/go-tree-sitter/javascript"
)

// Qooxdoo is the name of the qooxdoo class-definition dialect of JavaScript.
const Qooxdoo = "qooxdoo"

func init() {
	Languages[Qooxdoo] = &Language{
		Name:       Qooxdoo,
		Extensions: []string{".js"},
		lang:       javascript.GetLanguage(),
	}
}
