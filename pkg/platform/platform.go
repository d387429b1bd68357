// platform.go
package platform

import (
	"fmt"
	"runtime"
)

// System represents a CPU-architecture/OS double, e.g. "x86_64-linux"
type System string

const (
	X8664Linux    System = "x86_64-linux"
	Aarch64Linux  System = "aarch64-linux"
	X8664Darwin   System = "x86_64-darwin"
	Aarch64Darwin System = "aarch64-darwin"
)

// DefaultSystems contains every system shellpin can target.
// A descriptor may declare a subset, never a superset.
var DefaultSystems = []System{
	X8664Linux,
	Aarch64Linux,
	X8664Darwin,
	Aarch64Darwin,
}

// Detect maps the running GOOS/GOARCH to a system double
func Detect() (System, error) {
	return detect(runtime.GOOS, runtime.GOARCH)
}

func detect(goos, goarch string) (System, error) {
	switch goos {
	case "linux":
		switch goarch {
		case "amd64":
			return X8664Linux, nil
		case "arm64":
			return Aarch64Linux, nil
		default:
			return "", fmt.Errorf("unsupported Linux architecture: %s", goarch)
		}

	case "darwin":
		switch goarch {
		case "amd64":
			return X8664Darwin, nil
		case "arm64":
			return Aarch64Darwin, nil
		default:
			return "", fmt.Errorf("unsupported Darwin architecture: %s", goarch)
		}

	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// String returns the string representation of the system
func (s System) String() string {
	return string(s)
}

// IsValid checks if the system is in the known set
func (s System) IsValid() bool {
	for _, valid := range DefaultSystems {
		if s == valid {
			return true
		}
	}
	return false
}
