package detect

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/soocke/detection-overlay-go/config"
)

// Artifacts holds the resolved paths of the topology and weights files.
type Artifacts struct {
	Topology string
	Weights  string
}

// ResolveArtifacts checks that both artifact files exist in dir and are
// readable, non-empty regular files. It never touches the network.
func ResolveArtifacts(dir string) (Artifacts, error) {
	a := Artifacts{
		Topology: filepath.Join(dir, config.TopologyFile),
		Weights:  filepath.Join(dir, config.WeightsFile),
	}
	for _, p := range []string{a.Topology, a.Weights} {
		if err := checkReadable(p); err != nil {
			return Artifacts{}, err
		}
	}
	return a, nil
}

func checkReadable(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelMissing, path, err)
	}
	if st.IsDir() || st.Size() == 0 {
		return fmt.Errorf("%w: %s: not a usable file", ErrModelMissing, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelMissing, path, err)
	}
	return f.Close()
}
