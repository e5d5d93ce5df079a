package film

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadActorFile reads an actor and filmography saved by WriteActorFile,
// or written by hand, so a render can run offline.
func LoadActorFile(path string) (*Actor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a Actor
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("actor file %s: %w", path, err)
	}
	if a.Name == "" {
		return nil, fmt.Errorf("actor file %s: name is empty", path)
	}
	return &a, nil
}

func WriteActorFile(a *Actor, path string) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
