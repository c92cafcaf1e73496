// Package srcinfo parses .SRCINFO files, the machine-readable manifests
// that describe AUR source packages.
//
// A .SRCINFO file has one pkgbase section followed by one or more pkgname
// sections. Keys in the pkgbase section act as defaults that pkgname
// sections inherit unless they declare the key themselves, mirroring
// makepkg's own semantics. Only the fields relevant to dependency
// resolution are retained: dependency lists, provide lists, and names.
package srcinfo

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/th3gh0s8/aura/pkg/errors"
)

// Srcinfo is the parsed form of one .SRCINFO file.
type Srcinfo struct {
	Base        string    // pkgbase: the name owning the source tree
	Version     string    // pkgver, or pkgver-pkgrel when pkgrel is present
	MakeDepends []string  // build-time dependencies (pkgbase section)
	Packages    []Package // pkgname sections, in file order
}

// Package is one pkgname section. A split package base produces several.
type Package struct {
	Name     string   // pkgname
	Depends  []string // runtime dependencies (own, or inherited from pkgbase)
	Provides []string // alternate names this package satisfies
}

// Primary returns the first pkgname section. Every valid .SRCINFO has at
// least one, so Primary is safe to call on any successfully parsed Srcinfo.
func (s *Srcinfo) Primary() Package {
	return s.Packages[0]
}

// AllDepends returns the union of the base's make-dependencies and every
// sub-package's runtime dependencies, deduplicated, in first-seen order.
// Entries keep their raw version demands (e.g. "glibc>=2.25").
func (s *Srcinfo) AllDepends() []string {
	seen := make(map[string]bool)
	var deps []string
	add := func(ds []string) {
		for _, d := range ds {
			if !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
	}
	add(s.MakeDepends)
	for _, p := range s.Packages {
		add(p.Depends)
	}
	return deps
}

// ProvidedNames returns every name under which this base's build output
// satisfies a dependency: each sub-package name plus each declared provide,
// deduplicated, in first-seen order. Version demands on provide entries are
// kept raw.
func (s *Srcinfo) ProvidedNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, p := range s.Packages {
		add(p.Name)
		for _, prov := range p.Provides {
			add(prov)
		}
	}
	return names
}

// ParseFile parses the .SRCINFO file at path.
func ParseFile(path string) (*Srcinfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSrcinfoParse, err, "cannot open %s", path)
	}
	defer f.Close()
	info, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSrcinfoParse, err, "cannot parse %s", path)
	}
	return info, nil
}

// Parse reads .SRCINFO data from r.
func Parse(r io.Reader) (*Srcinfo, error) {
	var (
		info        Srcinfo
		pkgver      string
		pkgrel      string
		baseDepends []string
		current     *Package // nil while in the pkgbase section
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeSrcinfoParse, "line %d: missing '=': %q", line, text)
		}
		key = normalizeKey(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "pkgbase":
			if info.Base != "" {
				return nil, errors.New(errors.ErrCodeSrcinfoParse, "line %d: duplicate pkgbase", line)
			}
			info.Base = value
		case "pkgname":
			if info.Base == "" {
				return nil, errors.New(errors.ErrCodeSrcinfoParse, "line %d: pkgname before pkgbase", line)
			}
			info.Packages = append(info.Packages, Package{Name: value})
			current = &info.Packages[len(info.Packages)-1]
		case "pkgver":
			pkgver = value
		case "pkgrel":
			pkgrel = value
		case "makedepends":
			if current == nil {
				info.MakeDepends = append(info.MakeDepends, value)
			}
		case "depends":
			if current == nil {
				baseDepends = append(baseDepends, value)
			} else {
				current.Depends = append(current.Depends, value)
			}
		case "provides":
			if current != nil {
				current.Provides = append(current.Provides, value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSrcinfoParse, err, "read failed")
	}

	if info.Base == "" {
		return nil, errors.New(errors.ErrCodeSrcinfoParse, "no pkgbase section")
	}
	if len(info.Packages) == 0 {
		return nil, errors.New(errors.ErrCodeSrcinfoParse, "no pkgname section")
	}

	info.Version = pkgver
	if pkgver != "" && pkgrel != "" {
		info.Version = pkgver + "-" + pkgrel
	}

	// Sections without their own depends inherit the pkgbase depends,
	// matching makepkg's default-and-override behavior.
	for i := range info.Packages {
		if info.Packages[i].Depends == nil {
			info.Packages[i].Depends = append([]string(nil), baseDepends...)
		}
	}

	return &info, nil
}

// normalizeKey strips architecture suffixes (depends_x86_64 -> depends).
func normalizeKey(key string) string {
	for _, base := range []string{"makedepends", "depends", "provides"} {
		if strings.HasPrefix(key, base+"_") {
			return base
		}
	}
	return key
}
