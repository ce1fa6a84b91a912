// Package paths resolves the source and destination directories of every
// build target from a project root and a small table of relative segments.
//
// Nothing here reads the environment or the working directory: the root and
// the selected output target are handed in by the config layer, so two
// resolvers built from the same values always agree.
package paths

import (
	"fmt"
	"path/filepath"

	kiterrors "github.com/conneroisu/frontkit/internal/errors"
)

// Role names a directory the build reads from or writes to.
type Role int

const (
	RoleRoot Role = iota
	RoleSrc
	RoleDist
	RolePackage
	RoleApp
)

// String returns the role name used in logs and the list command.
func (r Role) String() string {
	switch r {
	case RoleRoot:
		return "root"
	case RoleSrc:
		return "src"
	case RoleDist:
		return "dist"
	case RolePackage:
		return "package"
	case RoleApp:
		return "app"
	default:
		return "unknown"
	}
}

// Target selects which distribution root a build writes into.
type Target int

const (
	TargetPackage Target = iota
	TargetDist
	TargetApp
)

// String returns the target name.
func (t Target) String() string {
	switch t {
	case TargetPackage:
		return "package"
	case TargetDist:
		return "dist"
	case TargetApp:
		return "app"
	default:
		return "unknown"
	}
}

// ParseTarget parses a target name as given in config or FRONTKIT_TARGET.
func ParseTarget(name string) (Target, error) {
	switch name {
	case "", "package":
		return TargetPackage, nil
	case "dist":
		return TargetDist, nil
	case "app":
		return TargetApp, nil
	default:
		return TargetPackage, kiterrors.NewConfigError(kiterrors.ErrCodeInvalidPath,
			fmt.Sprintf("unknown build target %q (want package, dist or app)", name))
	}
}

// Role returns the directory role a target writes into.
func (t Target) Role() Role {
	switch t {
	case TargetDist:
		return RoleDist
	case TargetApp:
		return RoleApp
	default:
		return RolePackage
	}
}

// Layout is the table of root-relative segments.
type Layout struct {
	Src       string `mapstructure:"src"`
	Dist      string `mapstructure:"dist"`
	Package   string `mapstructure:"package"`
	App       string `mapstructure:"app"`
	Namespace string `mapstructure:"namespace"`
}

// DefaultLayout is the layout of a design-system repository.
func DefaultLayout() Layout {
	return Layout{
		Src:       "src",
		Dist:      "dist",
		Package:   "package",
		App:       "app",
		Namespace: "govuk",
	}
}

// TaskOptions is the location configuration every adapter call consumes.
type TaskOptions struct {
	BasePath   string
	SrcPath    string
	DestPath   string
	ConfigPath string
}

// Resolver maps roles to absolute directories.
type Resolver struct {
	root   string
	target Target
	layout Layout
	roles  map[Role]string
}

// NewResolver builds a resolver for root. A relative root is made absolute
// once, here.
func NewResolver(root string, target Target, layout Layout) (*Resolver, error) {
	if root == "" {
		return nil, kiterrors.NewConfigError(kiterrors.ErrCodeInvalidPath, "project root is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, kiterrors.WrapConfig(err, kiterrors.ErrCodeInvalidPath, "resolving project root")
	}

	segments := map[Role]string{
		RoleSrc:     layout.Src,
		RoleDist:    layout.Dist,
		RolePackage: layout.Package,
		RoleApp:     layout.App,
	}

	roles := map[Role]string{RoleRoot: abs}
	for role, segment := range segments {
		if segment == "" || filepath.IsAbs(segment) {
			return nil, kiterrors.NewConfigError(kiterrors.ErrCodeInvalidPath,
				fmt.Sprintf("%s segment %q must be a non-empty relative path", role, segment))
		}
		roles[role] = filepath.Join(abs, segment)
	}

	return &Resolver{root: abs, target: target, layout: layout, roles: roles}, nil
}

// Path returns the absolute directory of role.
func (r *Resolver) Path(role Role) string {
	return r.roles[role]
}

// Join returns role's directory joined with elem.
func (r *Resolver) Join(role Role, elem ...string) string {
	return filepath.Join(append([]string{r.roles[role]}, elem...)...)
}

// Target returns the output target this resolver was built for.
func (r *Resolver) Target() Target {
	return r.target
}

// AppOutput is the directory beneath the app role that app builds write.
const AppOutput = "dist"

// Output returns the distribution root of the selected target.
func (r *Resolver) Output() string {
	return r.OutputOf(r.target)
}

// OutputOf returns the distribution root of target. The app serves its
// assets from a subdirectory of its sources.
func (r *Resolver) OutputOf(target Target) string {
	if target == TargetApp {
		return r.Join(RoleApp, AppOutput)
	}
	return r.roles[target.Role()]
}

// Namespace returns the role subdirectory names: the plain namespace, its
// ES module variant and its prototype kit variant.
func (r *Resolver) Namespace() (plain, esm, kit string) {
	ns := r.layout.Namespace
	return ns, ns + "-esm", ns + "-prototype-kit"
}

// Roles returns every role in order.
func (r *Resolver) Roles() []Role {
	return []Role{RoleRoot, RoleSrc, RoleDist, RolePackage, RoleApp}
}

// Options builds TaskOptions reading from src and writing to dest.
func (r *Resolver) Options(src, dest string) (TaskOptions, error) {
	return NewTaskOptions(r.root, src, dest)
}

// NewTaskOptions validates and builds TaskOptions. Both paths must be
// absolute and must differ, otherwise a clean of dest would delete sources.
func NewTaskOptions(base, src, dest string) (TaskOptions, error) {
	if !filepath.IsAbs(src) || !filepath.IsAbs(dest) {
		return TaskOptions{}, kiterrors.NewConfigError(kiterrors.ErrCodeInvalidPath,
			fmt.Sprintf("source %q and destination %q must be absolute", src, dest))
	}
	src, dest = filepath.Clean(src), filepath.Clean(dest)
	if src == dest {
		return TaskOptions{}, kiterrors.NewConfigError(kiterrors.ErrCodeSamePaths,
			fmt.Sprintf("source and destination are both %q", src))
	}
	return TaskOptions{BasePath: base, SrcPath: src, DestPath: dest}, nil
}

// WithConfig returns a copy of o carrying a config file path.
func (o TaskOptions) WithConfig(path string) TaskOptions {
	o.ConfigPath = path
	return o
}
