package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrResourceNotFound is returned when a requested asset does not exist.
var ErrResourceNotFound = errors.New("resource not found")

type TextureKind int

const (
	TextureR8 TextureKind = iota
	TextureRGB8
	TextureRGBA8
)

type BufferKind int

const (
	BufferNormal BufferKind = iota
	BufferStream
)

type (
	TextureHandle uint32
	BufferHandle  uint32
)

type resourceKey struct {
	path string
	kind int
}

// ResourceManager hands out shared handles for assets. Decoding is not
// performed; a handle only identifies the asset. When root is set, the asset
// must exist below it.
type ResourceManager struct {
	root     string
	textures map[resourceKey]TextureHandle
	buffers  map[resourceKey]BufferHandle
}

func NewResourceManager(root string) *ResourceManager {
	return &ResourceManager{
		root:     root,
		textures: make(map[resourceKey]TextureHandle),
		buffers:  make(map[resourceKey]BufferHandle),
	}
}

// RequestTexture returns the handle for the texture at path, loading it on
// first use.
func (m *ResourceManager) RequestTexture(path string, kind TextureKind) (TextureHandle, error) {
	key := resourceKey{path: path, kind: int(kind)}
	if h, ok := m.textures[key]; ok {
		return h, nil
	}
	if err := m.check(path); err != nil {
		return 0, err
	}
	h := TextureHandle(len(m.textures) + 1)
	m.textures[key] = h
	return h, nil
}

// RequestSoundBuffer returns the handle for the sound at path.
func (m *ResourceManager) RequestSoundBuffer(path string, kind BufferKind) (BufferHandle, error) {
	key := resourceKey{path: path, kind: int(kind)}
	if h, ok := m.buffers[key]; ok {
		return h, nil
	}
	if err := m.check(path); err != nil {
		return 0, err
	}
	h := BufferHandle(len(m.buffers) + 1)
	m.buffers[key] = h
	return h, nil
}

func (m *ResourceManager) check(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrResourceNotFound)
	}
	if m.root == "" {
		return nil
	}
	if _, err := os.Stat(filepath.Join(m.root, path)); err != nil {
		return fmt.Errorf("%w: %s", ErrResourceNotFound, path)
	}
	return nil
}
