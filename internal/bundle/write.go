package bundle

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteOutput writes script to path atomically: the bytes go to a temporary
// file in the same directory which is then renamed over path. A failed
// write leaves no file behind and any previous bundle untouched.
func WriteOutput(path string, script []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(script); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
