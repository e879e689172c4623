package village3d

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrUnsupportedAsset = errors.New("unsupported asset format")
	// ErrEmptyAsset is reported when a loader succeeds without a node hierarchy.
	ErrEmptyAsset = errors.New("asset has no root node")
)

// AssetLoader loads an asset into a node hierarchy. The returned root's
// immediate children are the asset's top-level nodes. auxPath names auxiliary
// resources such as a mesh decoder directory.
type AssetLoader interface {
	Load(ctx context.Context, path, auxPath string) (*Node, error)
}

// AssetLoaderFunc adapts a function to AssetLoader.
type AssetLoaderFunc func(ctx context.Context, path, auxPath string) (*Node, error)

func (f AssetLoaderFunc) Load(ctx context.Context, path, auxPath string) (*Node, error) {
	return f(ctx, path, auxPath)
}

// LoadResult is delivered once an asynchronous load finishes.
type LoadResult struct {
	Path     string
	Root     *Node
	Err      error
	Duration time.Duration
}

// LoadAsync runs the loader on its own goroutine. The returned channel receives
// exactly one result and is then closed. A successful result always has a
// non-nil Root.
func LoadAsync(ctx context.Context, loader AssetLoader, path, auxPath string) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		defer close(ch)
		start := time.Now()
		root, err := loader.Load(ctx, path, auxPath)
		if err == nil && root == nil {
			err = ErrEmptyAsset
		}
		if err != nil {
			err = fmt.Errorf("load asset %s: %w", path, err)
		}
		ch <- LoadResult{Path: path, Root: root, Err: err, Duration: time.Since(start)}
	}()
	return ch
}

// ExtensionLoader dispatches to a loader by file extension.
type ExtensionLoader struct {
	loaders map[string]AssetLoader
}

// NewExtensionLoader returns a loader that knows glTF and YAML layouts.
func NewExtensionLoader() *ExtensionLoader {
	el := &ExtensionLoader{loaders: make(map[string]AssetLoader)}
	gl := &GLTFLoader{}
	yl := &YAMLLoader{}
	el.Register(".glb", gl)
	el.Register(".gltf", gl)
	el.Register(".yaml", yl)
	el.Register(".yml", yl)
	return el
}

func (el *ExtensionLoader) Register(ext string, loader AssetLoader) {
	el.loaders[strings.ToLower(ext)] = loader
}

// LoaderForPath returns the loader registered for the path's extension.
func (el *ExtensionLoader) LoaderForPath(path string) (AssetLoader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := el.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedAsset)
	}
	return l, nil
}

func (el *ExtensionLoader) Load(ctx context.Context, path, auxPath string) (*Node, error) {
	l, err := el.LoaderForPath(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("Loading asset", "path", path, "aux", auxPath)
	return l.Load(ctx, path, auxPath)
}
