package repl

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/lydakis/mcpchat/internal/paths"
	"github.com/lydakis/mcpchat/internal/provider"
)

// writeTranscript saves a session's history under the state dir, one
// JSON file per session. A history holding only the system prompt is
// not worth keeping.
func writeTranscript(sessionID string, history []provider.Message) error {
	if len(history) <= 1 {
		return nil
	}

	dir := paths.TranscriptsDir()
	if err := paths.EnsureDir(dir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, sessionID+".json"), data, 0600)
}
