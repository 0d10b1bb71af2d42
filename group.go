package azarr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/discochess/azarr/internal/meta"
)

// Node is an array or a group.
type Node interface {
	Path() string
	Name() string
	Attrs(ctx context.Context) (map[string]any, error)
}

// Compile-time checks.
var (
	_ Node = (*Array)(nil)
	_ Node = (*Group)(nil)
)

// Group is an opened zarr group.
type Group struct {
	client *Client
	path   string
}

// Path returns the group's path within the store. The root is "".
func (g *Group) Path() string { return g.path }

// Name returns the last element of the group's path.
func (g *Group) Name() string { return baseName(g.path) }

// Attrs returns the group's user attributes.
func (g *Group) Attrs(ctx context.Context) (map[string]any, error) {
	return g.client.attrs(ctx, g.path)
}

// Array opens the child array name. name may be a relative path.
func (g *Group) Array(ctx context.Context, name string) (*Array, error) {
	path, err := g.child(name)
	if err != nil {
		return nil, err
	}
	if g.client.closed.Load() {
		return nil, ErrClosed
	}
	return g.client.openArray(ctx, path)
}

// Group opens the child group name. name may be a relative path.
func (g *Group) Group(ctx context.Context, name string) (*Group, error) {
	path, err := g.child(name)
	if err != nil {
		return nil, err
	}
	if g.client.closed.Load() {
		return nil, ErrClosed
	}
	return g.client.openGroup(ctx, path)
}

// Node opens the child name as an array if it has a .zarray document,
// otherwise as a group if it has a .zgroup document. It fails with
// ErrNodeNotFound if it has neither.
func (g *Group) Node(ctx context.Context, name string) (Node, error) {
	path, err := g.child(name)
	if err != nil {
		return nil, err
	}
	if g.client.closed.Load() {
		return nil, ErrClosed
	}

	arr, err := g.client.openArray(ctx, path)
	if err == nil {
		return arr, nil
	}
	if !errors.Is(err, ErrArrayNotFound) {
		return nil, err
	}

	grp, err := g.client.openGroup(ctx, path)
	if err == nil {
		return grp, nil
	}
	if errors.Is(err, ErrGroupNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, path)
	}
	return nil, err
}

func (g *Group) child(name string) (string, error) {
	rel, err := meta.NormalizePath(name)
	if err != nil {
		return "", err
	}
	if rel == "" {
		return "", fmt.Errorf("azarr: empty child name %q", name)
	}
	return meta.Key(g.path, rel), nil
}

func baseName(path string) string {
	return path[strings.LastIndexByte(path, '/')+1:]
}
