// Package render defines the contract shared by the output backends. Every
// backend consumes the same composed blocks; none of them re-wraps or
// re-truncates text.
package render

import "github.com/fkorte/briefroll/layout"

// Renderer turns a composition into one finished artifact: PNG bytes, an
// ESC/POS command stream, or the plain-text mirror.
type Renderer interface {
	Render(comp *layout.Composition) ([]byte, error)
}
