package keys

import (
	"fmt"
	"os"

	"github.com/osavchuk/authsvc/internal/common"
)

// NewSetFromFiles reads the private signing key and any retired public keys
// from PEM files on disk.
func NewSetFromFiles(privateKeyPath string, retiredPublicKeyPaths ...string) (*Set, error) {
	privatePEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", common.ErrKeyMaterial, privateKeyPath, err)
	}

	retired := make([][]byte, 0, len(retiredPublicKeyPaths))
	for _, path := range retiredPublicKeyPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", common.ErrKeyMaterial, path, err)
		}
		retired = append(retired, raw)
	}

	return NewSet(privatePEM, retired...)
}
