package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON dumps a composition as indented JSON for inspection, so
// layout regressions can be diffed without rendering anything.
func WriteDebugJSON(comp *Composition, path string) error {
	if comp == nil {
		return nil
	}
	data, err := json.MarshalIndent(comp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
