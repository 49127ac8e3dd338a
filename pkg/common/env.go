package common

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

const (
	envPathStdin = "stdin"
)

// EnvMap resolves variables from a .env file first and the process
// environment second.
type EnvMap struct {
	path   string
	envMap map[string]string
	lock   sync.Mutex
}

func (em *EnvMap) GetEx(key string) (string, bool) {
	if len(key) == 0 {
		return "", false
	}

	em.lock.Lock()
	v, ok := em.envMap[key]
	em.lock.Unlock()

	if ok {
		return v, ok
	}

	return os.LookupEnv(key)
}

func (em *EnvMap) Get(key string) string {
	v, ok := em.GetEx(key)
	if !ok {
		slog.Log(context.Background(), LevelTrace, "Environment variable is not set", "key", key)
	}

	return v
}

func (em *EnvMap) Update() error {
	if (len(em.path) == 0) || (em.path == envPathStdin) {
		return nil
	}

	envMap, err := godotenv.Read(em.path)
	if err != nil {
		return err
	}

	em.lock.Lock()
	em.envMap = envMap
	em.lock.Unlock()

	return nil
}

func NewEnvMap(path string) (*EnvMap, error) {
	em := &EnvMap{path: path}

	switch path {
	case "":
	case envPathStdin:
		envMap, err := godotenv.Parse(os.Stdin)
		if err != nil {
			return nil, err
		}
		em.envMap = envMap
	default:
		if err := em.Update(); err != nil {
			return nil, err
		}
	}

	return em, nil
}
